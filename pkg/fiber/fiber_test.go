package fiber

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
	"github.com/vango-dev/didact/pkg/host/idle"
	"github.com/vango-dev/didact/pkg/host/memhost"
)

// appendOnly hides the Inserter extension of the wrapped adapter.
type appendOnly struct {
	host.Adapter
}

type harness struct {
	doc   *memhost.Document
	sched *idle.Manual
	r     *Reconciler
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	doc := memhost.New()
	sched := idle.NewManual()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return &harness{doc: doc, sched: sched, r: New(doc, sched, opts...)}
}

func newAppendOnlyHarness(t *testing.T) *harness {
	t.Helper()
	doc := memhost.New()
	sched := idle.NewManual()
	return &harness{doc: doc, sched: sched, r: New(appendOnly{doc}, sched, WithLogger(quietLogger()))}
}

// render renders el into the document root and drains the scheduler.
func (h *harness) render(el *element.Element) {
	h.r.Render(el, h.doc.Root())
	h.drain()
}

func (h *harness) drain() {
	h.sched.Drain(1<<20, 0)
}

func (h *harness) html() string {
	return memhost.HTML(h.doc.Root())
}

func (h *harness) mutations() []string {
	ms := h.doc.TakeMutations()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

func (h *harness) click(t *testing.T, tag string) {
	t.Helper()
	n := h.doc.Root().FindTag(tag)
	if n == nil {
		t.Fatalf("no <%s> in %s", tag, h.html())
	}
	if _, err := h.doc.Dispatch(n.ID(), element.Event{Type: "click"}); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
}

func expectFault(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		de, ok := errors.AsFault(rec)
		if !ok {
			t.Fatalf("expected fault %s, got %v", code, rec)
		}
		if de.Code != code {
			t.Errorf("fault code = %s, want %s (%v)", de.Code, code, de)
		}
	}()
	fn()
}

func list(items ...string) *element.Element {
	children := make([]*element.Element, len(items))
	for i, item := range items {
		children[i] = element.H("li", nil, item)
	}
	return element.H("ul", nil, children)
}

func TestRenderInitialTree(t *testing.T) {
	h := newHarness(t)
	h.render(element.H("div", []element.Prop{element.Attr("id", "app")},
		element.H("h1", nil, "Hello"),
		element.H("p", nil, "World"),
	))

	want := `<div id="app"><h1>Hello</h1><p>World</p></div>`
	if got := h.html(); got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
	stats := h.r.LastCommit()
	if stats.Placements != 5 || stats.Updates != 0 || stats.Deletions != 0 {
		t.Errorf("stats = %+v, want 5 placements only", stats)
	}
	if stats.Trigger != TriggerRender {
		t.Errorf("Trigger = %q, want %q", stats.Trigger, TriggerRender)
	}
	if h.r.Pending() {
		t.Error("Pending() = true after drain")
	}
}

func TestRenderIdenticalTreeIsNoop(t *testing.T) {
	h := newHarness(t)
	build := func() *element.Element {
		return element.H("div", []element.Prop{element.Attr("class", "card")},
			element.H("h1", nil, "Title"),
			element.H("p", nil, 42),
		)
	}
	h.render(build())
	h.doc.TakeMutations()

	h.render(build())
	if got := h.mutations(); len(got) != 0 {
		t.Errorf("re-render mutations = %v, want none", got)
	}
	if stats := h.r.LastCommit(); stats.Updates != 5 || stats.Placements != 0 {
		t.Errorf("stats = %+v, want 5 updates", stats)
	}
}

func TestRenderReplacesOnTypeChange(t *testing.T) {
	h := newHarness(t)
	h.render(element.H("div", nil, element.H("span", nil, "a")))
	h.doc.TakeMutations()
	span := h.doc.Root().FindTag("span")

	h.render(element.H("div", nil, element.H("p", nil, "a")))

	want := []string{
		"create 5 p",
		"create 6 #text",
		`set 6 nodeValue="a"`,
		"remove 3 <- 2",
		"append 5 -> 2",
		"append 6 -> 5",
	}
	if diff := cmp.Diff(want, h.mutations()); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	if _, ok := h.doc.Node(span.ID()); ok {
		t.Error("replaced span should be forgotten by the document")
	}
	if got := h.html(); got != "<div><p>a</p></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestRenderRemovesTrailingChild(t *testing.T) {
	h := newHarness(t)
	h.render(list("a", "b", "c"))
	h.doc.TakeMutations()

	h.render(list("a", "c"))

	want := []string{
		"remove 7 <- 2",
		`set 6 nodeValue="c"`,
	}
	if diff := cmp.Diff(want, h.mutations()); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	if got := h.html(); got != "<ul><li>a</li><li>c</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestRenderDiffsChildrenByPosition(t *testing.T) {
	h := newHarness(t)
	h.render(element.H("div", nil, element.H("a", nil), element.H("b", nil), element.H("c", nil)))
	h.doc.TakeMutations()

	h.render(element.H("div", nil, element.H("a", nil), element.H("c", nil)))

	// a is updated in place. Position 1 changes type, so b is deleted and c
	// placed; the old c at position 2 has no counterpart and is deleted.
	stats := h.r.LastCommit()
	if stats.Placements != 1 || stats.Updates != 2 || stats.Deletions != 2 {
		t.Errorf("stats = %+v, want 1 placement 2 updates 2 deletions", stats)
	}
	want := []string{
		"create 6 c",
		"remove 4 <- 2",
		"remove 5 <- 2",
		"append 6 -> 2",
	}
	if diff := cmp.Diff(want, h.mutations()); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	if got := h.html(); got != "<div><a></a><c></c></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestRenderPropsAndListeners(t *testing.T) {
	h := newHarness(t)
	var calls []string
	h.render(element.H("button", []element.Prop{
		element.Attr("class", "a"),
		element.Attr("title", "t"),
		element.On("click", func(element.Event) { calls = append(calls, "first") }),
	}))
	h.doc.TakeMutations()

	h.render(element.H("button", []element.Prop{
		element.Attr("class", "b"),
		element.On("click", func(element.Event) { calls = append(calls, "second") }),
	}))

	want := []string{
		"unlisten 2 click",
		"unset 2 title",
		`set 2 class="b"`,
		"listen 2 click",
	}
	if diff := cmp.Diff(want, h.mutations()); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}

	h.click(t, "button")
	if diff := cmp.Diff([]string{"second"}, calls); diff != "" {
		t.Errorf("listener calls (-want +got):\n%s", diff)
	}
	if n := h.doc.Root().FindTag("button"); n.ListenerCount() != 1 {
		t.Errorf("ListenerCount() = %d, want 1", n.ListenerCount())
	}
}

func TestRenderNilClearsContainer(t *testing.T) {
	h := newHarness(t)
	h.render(list("a"))
	h.render(nil)
	if got := h.html(); got != "" {
		t.Errorf("html = %q, want empty", got)
	}
	if h.doc.Len() != 1 {
		t.Errorf("Len() = %d, want only the root", h.doc.Len())
	}
}

func TestRenderNewContainerPlacesFresh(t *testing.T) {
	h := newHarness(t)
	h.render(list("a"))

	other := h.doc.CreateNode("section")
	h.r.Render(list("a"), other)
	h.drain()

	if stats := h.r.LastCommit(); stats.Placements != 3 || stats.Updates != 0 {
		t.Errorf("stats = %+v, want 3 placements", stats)
	}
	if got := memhost.HTML(other.(*memhost.Node)); got != "<section><ul><li>a</li></ul></section>" {
		t.Errorf("other container html = %s", got)
	}
	if got := h.html(); got != "<ul><li>a</li></ul>" {
		t.Errorf("first container should be untouched, html = %s", got)
	}
}

func TestInsertKeepsElementOrder(t *testing.T) {
	middle := func(tag string) *element.Element {
		return element.H("div", nil,
			element.H("p", nil, "a"),
			element.H(tag, nil, "b"),
			element.H("p", nil, "c"),
		)
	}

	t.Run("inserter", func(t *testing.T) {
		h := newHarness(t)
		h.render(middle("span"))
		h.render(middle("em"))
		if got := h.html(); got != "<div><p>a</p><em>b</em><p>c</p></div>" {
			t.Errorf("html = %s", got)
		}
	})

	t.Run("append only", func(t *testing.T) {
		h := newAppendOnlyHarness(t)
		h.render(middle("span"))
		h.render(middle("em"))
		if got := h.html(); got != "<div><p>a</p><p>c</p><em>b</em></div>" {
			t.Errorf("html = %s", got)
		}
	})
}

func TestDump(t *testing.T) {
	h := newHarness(t)
	greeting := Define("Greeting", func(_ *Hooks, props element.Props) *element.Element {
		return element.H("h1", nil, props.Lookup("name").Str())
	})
	h.render(element.H("div", []element.Prop{element.Attr("id", "app")},
		greeting.Element([]element.Prop{element.Attr("name", "x")}),
	))

	want := strings.Join([]string{
		"#root",
		`  div id="app" [placement]`,
		"    <Greeting> [placement]",
		"      h1 [placement]",
		`        "x" [placement]`,
		"",
	}, "\n")
	if got := Dump(h.r.Current()); got != want {
		t.Errorf("Dump() =\n%s\nwant\n%s", got, want)
	}
	if Dump(nil) != "" {
		t.Error("Dump(nil) should be empty")
	}
}

func TestFiberTreeLinks(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		h.render(list("a", "b"))
	}

	root := h.r.Current()
	ul := root.Child()
	if ul.Parent() != root || ul.Kind() != KindHost || ul.Effect() != EffectUpdate {
		t.Fatalf("unexpected ul fiber: kind=%v effect=%v", ul.Kind(), ul.Effect())
	}
	items := ul.Children()
	if len(items) != 2 || items[0].Sibling() != items[1] || items[1].Sibling() != nil {
		t.Fatalf("ul children not linked in order")
	}
	if items[0].Alternate() == nil {
		t.Fatal("updated fiber should keep its alternate")
	}
	if items[0].Alternate().Alternate() != nil {
		t.Error("committed alternates should not retain older generations")
	}
	if items[0].Node() != items[0].Alternate().Node() {
		t.Error("updated fiber should reuse the host node")
	}
}
