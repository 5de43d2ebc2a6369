// Package demo holds the sample applications served and rendered by the
// didact command.
package demo

import (
	"sort"
	"strings"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/fiber"
)

// Counter renders a heading that counts clicks. The optional "start" prop
// sets the initial count (default 1).
var Counter = fiber.Define("Counter", func(h *fiber.Hooks, props element.Props) *element.Element {
	initial := 1
	if start := props.Lookup("start"); start.Kind() == element.KindNumber {
		initial = int(start.Num())
	}
	count, setCount := fiber.UseState(h, initial)

	return element.H("h1", []element.Prop{
		element.Attr("class", "counter"),
		element.On("click", func(element.Event) {
			setCount(func(c int) int { return c + 1 })
		}),
	}, "Count: ", count)
})

// TodoList renders an input, an add button and the list of added items,
// each with a remove button.
var TodoList = fiber.Define("TodoList", func(h *fiber.Hooks, _ element.Props) *element.Element {
	items, setItems := fiber.UseState[[]string](h, nil)
	draft, setDraft := fiber.UseState(h, "")

	add := func(element.Event) {
		text := strings.TrimSpace(draft)
		if text == "" {
			return
		}
		setItems(func(cur []string) []string {
			next := make([]string, len(cur), len(cur)+1)
			copy(next, cur)
			return append(next, text)
		})
		setDraft(fiber.Set(""))
	}

	lis := make([]*element.Element, len(items))
	for i, item := range items {
		i := i
		lis[i] = element.H("li", nil,
			item,
			element.H("button", []element.Prop{
				element.Attr("class", "remove"),
				element.On("click", func(element.Event) {
					setItems(func(cur []string) []string {
						if i >= len(cur) {
							return cur
						}
						next := make([]string, 0, len(cur)-1)
						next = append(next, cur[:i]...)
						return append(next, cur[i+1:]...)
					})
				}),
			}, "×"),
		)
	}

	return element.H("section", []element.Prop{element.Attr("class", "todo")},
		element.H("input", []element.Prop{
			element.Attr("value", draft),
			element.Attr("placeholder", "What needs doing?"),
			element.On("input", func(ev element.Event) {
				setDraft(fiber.Set(ev.Value))
			}),
		}),
		element.H("button", []element.Prop{
			element.Attr("class", "add"),
			element.On("click", add),
		}, "Add"),
		element.H("ul", nil, lis),
	)
})

// apps maps application names to root element builders.
var apps = map[string]func() *element.Element{
	"counter": func() *element.Element {
		return element.H("main", nil, Counter.Element(nil))
	},
	"todo": func() *element.Element {
		return element.H("main", nil, TodoList.Element(nil))
	},
	"app": func() *element.Element {
		return element.H("main", nil,
			element.H("h2", nil, "didact"),
			Counter.Element(nil),
			TodoList.Element(nil),
		)
	},
}

// DefaultApp is the application used when none is named.
const DefaultApp = "app"

// Lookup returns the root element builder for name.
func Lookup(name string) (func() *element.Element, error) {
	app, ok := apps[name]
	if !ok {
		return nil, errors.New(errors.CodeUnknownComponentName).
			WithDetailf("no demo application named %q", name).
			WithSuggestion("Available: " + strings.Join(Names(), ", "))
	}
	return app, nil
}

// Names returns the registered application names in sorted order.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
