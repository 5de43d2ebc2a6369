package fiber

import (
	"fmt"
	"testing"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
)

// newCounter returns a component rendering an h1 whose click handler passes
// actions to the setter in order.
func newCounter(actions ...func(int) int) *Component {
	return Define("Counter", func(h *Hooks, _ element.Props) *element.Element {
		count, setCount := UseState(h, 1)
		return element.H("h1", []element.Prop{
			element.On("click", func(element.Event) {
				for _, a := range actions {
					setCount(a)
				}
			}),
		}, "Count: ", count)
	})
}

func inc(n int) func(int) int { return func(c int) int { return c + n } }

func TestUseStatePersistsAcrossRenders(t *testing.T) {
	h := newHarness(t)
	step := 1
	counter := newCounter(func(c int) int { return inc(step)(c) })
	h.render(counter.Element(nil))

	if got := h.doc.Root().Text(); got != "Count: 1" {
		t.Fatalf("initial text = %q, want %q", got, "Count: 1")
	}

	h.click(t, "h1")
	if !h.r.Pending() {
		t.Fatal("setter should schedule a render pass")
	}
	h.drain()
	if got := h.doc.Root().Text(); got != "Count: 2" {
		t.Errorf("after +1 text = %q, want %q", got, "Count: 2")
	}

	step = 2
	h.click(t, "h1")
	h.drain()
	if got := h.doc.Root().Text(); got != "Count: 4" {
		t.Errorf("after +2 text = %q, want %q", got, "Count: 4")
	}
	if stats := h.r.LastCommit(); stats.Trigger != TriggerState {
		t.Errorf("Trigger = %q, want %q", stats.Trigger, TriggerState)
	}
}

func TestUseStateAppliesActionsInOrder(t *testing.T) {
	h := newHarness(t)
	double := func(c int) int { return c * 2 }
	counter := newCounter(double, inc(1))
	h.render(counter.Element(nil))

	h.click(t, "h1")
	h.drain()
	if got := h.doc.Root().Text(); got != "Count: 3" {
		t.Errorf("text = %q, want %q", got, "Count: 3")
	}
}

func TestUseStateMultipleHooks(t *testing.T) {
	h := newHarness(t)
	var setName func(func(string) string)
	var setOn func(func(bool) bool)
	form := Define("Form", func(hk *Hooks, _ element.Props) *element.Element {
		name, sn := UseState(hk, "anon")
		on, so := UseState(hk, false)
		setName, setOn = sn, so
		return element.H("p", nil, fmt.Sprintf("%s:%v", name, on))
	})
	h.render(form.Element(nil))

	setName(Set("ada"))
	setOn(func(b bool) bool { return !b })
	h.drain()

	if got := h.doc.Root().Text(); got != "ada:true" {
		t.Errorf("text = %q, want %q", got, "ada:true")
	}
	if n := h.r.Current().Child().HookCount(); n != 2 {
		t.Errorf("HookCount() = %d, want 2", n)
	}
}

func TestUseStateNilInterfaceState(t *testing.T) {
	h := newHarness(t)
	var setErr func(func(error) error)
	c := Define("Status", func(hk *Hooks, _ element.Props) *element.Element {
		err, set := UseState[error](hk, nil)
		setErr = set
		if err != nil {
			return element.H("p", nil, err.Error())
		}
		return element.H("p", nil, "ok")
	})
	h.render(c.Element(nil))
	h.render(c.Element(nil))
	if got := h.doc.Root().Text(); got != "ok" {
		t.Fatalf("text = %q, want ok", got)
	}

	setErr(Set[error](fmt.Errorf("boom")))
	h.drain()
	if got := h.doc.Root().Text(); got != "boom" {
		t.Errorf("text = %q, want boom", got)
	}
}

func TestComponentChildrenAndNilRender(t *testing.T) {
	h := newHarness(t)
	wrapper := Define("Wrapper", func(_ *Hooks, props element.Props) *element.Element {
		return element.H("section", nil, props.Children)
	})
	empty := Define("Empty", func(*Hooks, element.Props) *element.Element { return nil })

	h.render(element.H("div", nil,
		wrapper.Element(nil, element.H("b", nil, "x"), "y"),
		empty.Element(nil),
	))
	if got := h.html(); got != "<div><section><b>x</b>y</section></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestDeletionThroughComponent(t *testing.T) {
	h := newHarness(t)
	item := Define("Item", func(_ *Hooks, props element.Props) *element.Element {
		return element.H("span", nil, props.Lookup("label").Str())
	})
	h.render(element.H("div", nil, item.Element([]element.Prop{element.Attr("label", "a")})))
	span := h.doc.Root().FindTag("span")
	div := h.doc.Root().FindTag("div")
	h.doc.TakeMutations()

	h.render(element.H("div", nil))

	want := fmt.Sprintf("remove %d <- %d", span.ID(), div.ID())
	got := h.mutations()
	if len(got) != 1 || got[0] != want {
		t.Errorf("mutations = %v, want [%s]", got, want)
	}
}

func TestComponentSwapKeepsPosition(t *testing.T) {
	swap := Define("Swap", func(_ *Hooks, props element.Props) *element.Element {
		if props.Lookup("em").Truth() {
			return element.H("em", nil, "b")
		}
		return element.H("span", nil, "b")
	})
	build := func(em bool) *element.Element {
		return element.H("div", nil,
			element.H("p", nil, "a"),
			swap.Element([]element.Prop{element.Attr("em", em)}),
			element.H("p", nil, "c"),
		)
	}

	h := newHarness(t)
	h.render(build(false))
	h.render(build(true))
	if got := h.html(); got != "<div><p>a</p><em>b</em><p>c</p></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestComponentIdentity(t *testing.T) {
	render := func(*Hooks, element.Props) *element.Element { return element.H("p", nil) }
	a := Define("Same", render)
	b := Define("Same", render)

	h := newHarness(t)
	h.render(a.Element(nil))
	h.render(b.Element(nil))
	if stats := h.r.LastCommit(); stats.Deletions != 1 || stats.Placements != 2 {
		t.Errorf("stats = %+v, want a replaced component", stats)
	}
}

func TestDefineNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Define("Bad", nil)
}

func TestHookFaults(t *testing.T) {
	t.Run("outside render", func(t *testing.T) {
		expectFault(t, errors.CodeHookOutsideRender, func() {
			UseState(nil, 0)
		})
	})

	t.Run("retained handle", func(t *testing.T) {
		h := newHarness(t)
		var kept *Hooks
		c := Define("Leak", func(hk *Hooks, _ element.Props) *element.Element {
			kept = hk
			return nil
		})
		h.render(c.Element(nil))
		expectFault(t, errors.CodeHookOutsideRender, func() {
			UseState(kept, 0)
		})
	})

	t.Run("count changed", func(t *testing.T) {
		h := newHarness(t)
		c := Define("Cond", func(hk *Hooks, props element.Props) *element.Element {
			UseState(hk, 0)
			if props.Lookup("extra").Truth() {
				UseState(hk, 0)
			}
			return nil
		})
		h.render(c.Element(nil))
		h.r.Render(c.Element([]element.Prop{element.Attr("extra", true)}), h.doc.Root())
		expectFault(t, errors.CodeHookCountChanged, h.drain)
		if h.r.Pending() {
			t.Error("failed pass should be abandoned")
		}
	})

	t.Run("type changed", func(t *testing.T) {
		h := newHarness(t)
		c := Define("Typed", func(hk *Hooks, props element.Props) *element.Element {
			if props.Lookup("text").Truth() {
				UseState(hk, "x")
			} else {
				UseState(hk, 0)
			}
			return nil
		})
		h.render(c.Element(nil))
		h.r.Render(c.Element([]element.Prop{element.Attr("text", true)}), h.doc.Root())
		expectFault(t, errors.CodeHookTypeChanged, h.drain)
	})
}

type foreignComponent struct{}

func (foreignComponent) ComponentName() string { return "Foreign" }

func TestEngineFaults(t *testing.T) {
	t.Run("unknown component", func(t *testing.T) {
		h := newHarness(t)
		h.r.Render(element.Build(element.Of(foreignComponent{}), nil), h.doc.Root())
		expectFault(t, errors.CodeUnknownComponent, h.drain)
	})

	t.Run("no host ancestor", func(t *testing.T) {
		h := newHarness(t)
		h.r.Render(element.H("div", nil), nil)
		expectFault(t, errors.CodeNoHostAncestor, h.drain)
		if h.r.Current() != nil {
			t.Error("failed commit should not become current")
		}
	})

	t.Run("update before render", func(t *testing.T) {
		h := newHarness(t)
		expectFault(t, errors.CodeNoRenderRoot, h.r.scheduleUpdate)
	})
}
