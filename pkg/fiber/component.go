package fiber

import (
	"github.com/vango-dev/didact/pkg/element"
)

// RenderFunc renders a component. It may return nil to produce no child.
type RenderFunc func(h *Hooks, props element.Props) *element.Element

// Component is a named render function. Component identity is the pointer,
// so define each component once, typically as a package-level variable.
type Component struct {
	name   string
	render RenderFunc
}

var _ element.ComponentType = (*Component)(nil)

// Define creates a component.
func Define(name string, render RenderFunc) *Component {
	if render == nil {
		panic("fiber: Define called with nil render function")
	}
	return &Component{name: name, render: render}
}

// ComponentName implements element.ComponentType.
func (c *Component) ComponentName() string {
	return c.name
}

// Element creates an element of this component type.
func (c *Component) Element(attrs []element.Prop, children ...any) *element.Element {
	return element.Build(element.Of(c), attrs, children...)
}
