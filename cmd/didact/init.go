package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/didact/internal/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default didact.json",
		Long: `Write a didact.json with default settings to dir (default: the
current directory). An existing file is kept unless --force is given.

Examples:
  didact init
  didact init ./deploy --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing didact.json")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if config.Exists(abs) && !force {
		return fmt.Errorf("%s already exists in %s (use --force to overwrite)", config.ConfigFileName, abs)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}

	cfg := config.New()
	cfg.Name = filepath.Base(abs)
	path := filepath.Join(abs, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success(cmd.OutOrStdout(), "Wrote %s", path)
	return nil
}
