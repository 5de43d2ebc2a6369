package element

import "strings"

// TextTag is the reserved host tag for text nodes.
const TextTag = "#text"

// NodeValue is the property that carries a text element's content.
const NodeValue = "nodeValue"

// ChildrenProp is the reserved property name for the child list. It never
// appears in the attribute list; children live in Props.Children.
const ChildrenProp = "children"

// ComponentType identifies a component. Implementations must be pointer
// types so that two Types compare equal only for the same component.
type ComponentType interface {
	ComponentName() string
}

// Type is either a host tag or a component, never both.
type Type struct {
	Tag  string
	Comp ComponentType
}

// Host returns the Type for a host tag.
func Host(tag string) Type { return Type{Tag: tag} }

// Of returns the Type for a component.
func Of(c ComponentType) Type { return Type{Comp: c} }

// IsComponent reports whether the type refers to a component.
func (t Type) IsComponent() bool { return t.Comp != nil }

// IsText reports whether the type is the reserved text tag.
func (t Type) IsText() bool { return t.Comp == nil && t.Tag == TextTag }

// String returns the tag, or the component name in angle brackets.
func (t Type) String() string {
	if t.Comp != nil {
		return "<" + t.Comp.ComponentName() + ">"
	}
	return t.Tag
}

// Prop is a single named property.
type Prop struct {
	Name  string
	Value Value
}

// Attr creates a Prop, converting v with ValueOf.
func Attr(name string, v any) Prop {
	return Prop{Name: name, Value: ValueOf(v)}
}

// On creates a listener Prop for event ("click" becomes "onClick").
func On(event string, fn func(Event)) Prop {
	name := "on"
	if event != "" {
		name += strings.ToUpper(event[:1]) + event[1:]
	}
	return Prop{Name: name, Value: Handler(fn)}
}

// Props is an ordered property bag plus the child list.
type Props struct {
	attrs    []Prop
	Children []*Element
}

// NewProps builds Props from attrs. Later duplicates replace earlier values
// but keep the first position. The children name is ignored.
func NewProps(attrs ...Prop) Props {
	var p Props
	for _, a := range attrs {
		p = p.With(a.Name, a.Value)
	}
	return p
}

// Len returns the number of attributes (excluding children).
func (p Props) Len() int { return len(p.attrs) }

// Get returns the value for name.
func (p Props) Get(name string) (Value, bool) {
	for _, a := range p.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// Lookup returns the value for name, or Null if absent.
func (p Props) Lookup(name string) Value {
	v, _ := p.Get(name)
	return v
}

// Has reports whether name is present.
func (p Props) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Attrs returns a copy of the attributes in order.
func (p Props) Attrs() []Prop {
	out := make([]Prop, len(p.attrs))
	copy(out, p.attrs)
	return out
}

// Each calls fn for every attribute in order.
func (p Props) Each(fn func(name string, v Value)) {
	for _, a := range p.attrs {
		fn(a.Name, a.Value)
	}
}

// With returns a copy of p with name set to v.
func (p Props) With(name string, v Value) Props {
	if name == "" || name == ChildrenProp {
		return p
	}
	attrs := make([]Prop, len(p.attrs), len(p.attrs)+1)
	copy(attrs, p.attrs)
	for i := range attrs {
		if attrs[i].Name == name {
			attrs[i].Value = v
			return Props{attrs: attrs, Children: p.Children}
		}
	}
	return Props{attrs: append(attrs, Prop{Name: name, Value: v}), Children: p.Children}
}

// Element is an immutable description of one tree node.
type Element struct {
	Type  Type
	Props Props
}

// Children returns the element's children.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	return e.Props.Children
}

// Build creates an Element. Children may be *Element (kept), []*Element
// (flattened), nil (skipped), or any other value, which is wrapped as a
// text element with nodeValue set to ValueOf(value).
func Build(t Type, attrs []Prop, children ...any) *Element {
	props := NewProps(attrs...)
	props.Children = normalizeChildren(children)
	return &Element{Type: t, Props: props}
}

// Text creates a text element with no children.
func Text(v any) *Element {
	return &Element{
		Type:  Host(TextTag),
		Props: Props{attrs: []Prop{{Name: NodeValue, Value: ValueOf(v)}}, Children: []*Element{}},
	}
}

func normalizeChildren(children []any) []*Element {
	out := make([]*Element, 0, len(children))
	for _, c := range children {
		switch v := c.(type) {
		case nil:
			continue
		case *Element:
			if v != nil {
				out = append(out, v)
			}
		case []*Element:
			for _, child := range v {
				if child != nil {
					out = append(out, child)
				}
			}
		default:
			out = append(out, Text(v))
		}
	}
	return out
}

// H is shorthand for Build(Host(tag), attrs, children...).
func H(tag string, attrs []Prop, children ...any) *Element {
	return Build(Host(tag), attrs, children...)
}
