package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/didact/internal/demo"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/fiber"
	"github.com/vango-dev/didact/pkg/host/idle"
	"github.com/vango-dev/didact/pkg/host/memhost"
)

type renderOptions struct {
	app    string
	clicks int
	steps  int
	json   bool
	fibers bool
}

func renderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a demo application to HTML",
		Long: `Render a demo application into an in-memory document and print its HTML.

Each --clicks dispatches a click to the first element listening for one and
renders the resulting state update. With --steps, the work loop runs in
slices that allow that many units of work each instead of to completion.

Examples:
  didact render
  didact render --app=counter --clicks=3
  didact render --app=todo --json
  didact render --steps=2 --fibers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.app, "app", "a", demo.DefaultApp, fmt.Sprintf("Demo application %v", demo.Names()))
	cmd.Flags().IntVarP(&opts.clicks, "clicks", "c", 0, "Number of clicks to simulate")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "Units of work per slice (0 renders each pass in one go)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print a JSON report instead of HTML")
	cmd.Flags().BoolVar(&opts.fibers, "fibers", false, "Print the committed fiber tree after the HTML")

	return cmd
}

// renderReport is the --json output.
type renderReport struct {
	App       string         `json:"app"`
	HTML      string         `json:"html"`
	Commits   []commitReport `json:"commits"`
	Mutations []string       `json:"mutations"`
}

type commitReport struct {
	Pass       uint64 `json:"pass"`
	Trigger    string `json:"trigger"`
	Units      int    `json:"units"`
	Slices     int    `json:"slices"`
	Placements int    `json:"placements"`
	Updates    int    `json:"updates"`
	Deletions  int    `json:"deletions"`
}

func runRender(w io.Writer, opts renderOptions) error {
	app, err := demo.Lookup(opts.app)
	if err != nil {
		return err
	}
	if opts.clicks < 0 {
		return fmt.Errorf("--clicks must not be negative")
	}

	report := renderReport{App: opts.app}
	doc := memhost.New()
	sched := idle.NewManual()
	rec := fiber.New(doc, sched,
		fiber.WithLogger(slog.Default()),
		fiber.WithCommitHook(func(s fiber.CommitStats) {
			report.Commits = append(report.Commits, commitReport{
				Pass:       s.Pass,
				Trigger:    s.Trigger,
				Units:      s.Units,
				Slices:     s.Slices,
				Placements: s.Placements,
				Updates:    s.Updates,
				Deletions:  s.Deletions,
			})
		}),
	)

	run := func() {
		if opts.steps > 0 {
			sched.Drain(opts.steps, 0)
			return
		}
		rec.Flush()
	}

	rec.Render(app(), doc.Root())
	run()

	for i := 0; i < opts.clicks; i++ {
		target := doc.Root().Find(func(n *memhost.Node) bool {
			return len(n.Listeners("click")) > 0
		})
		if target == nil {
			return fmt.Errorf("application %q has no click target", opts.app)
		}
		if _, err := doc.Dispatch(target.ID(), element.Event{Type: "click"}); err != nil {
			return err
		}
		run()
	}

	for _, m := range doc.TakeMutations() {
		report.Mutations = append(report.Mutations, m.String())
	}
	html, err := memhost.NewRenderer(memhost.RendererConfig{}).RenderToString(doc.Root())
	if err != nil {
		return err
	}
	report.HTML = html

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(w, html)
	if opts.fibers {
		fmt.Fprintln(w)
		fmt.Fprint(w, fiber.Dump(rec.Current()))
	}
	return nil
}
