package fiber

import (
	"fmt"
	"strings"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
)

// Effect is the host change a fiber needs at commit time.
type Effect uint8

const (
	EffectNone      Effect = iota // Root fiber, or not yet reconciled
	EffectPlacement               // Node must be attached to its host parent
	EffectUpdate                  // Node props must be diffed against the alternate
	EffectDeletion                // Node must be removed from its host parent
)

// String returns the string representation of the Effect.
func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectPlacement:
		return "placement"
	case EffectUpdate:
		return "update"
	case EffectDeletion:
		return "deletion"
	default:
		return fmt.Sprintf("Effect(%d)", e)
	}
}

// Kind distinguishes host fibers from component fibers.
type Kind uint8

const (
	KindHost      Kind = iota // Owns a host node
	KindComponent             // Produces children by running a component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	if k == KindComponent {
		return "component"
	}
	return "host"
}

// Fiber is one unit of work and one node of the fiber tree.
//
// parent and alternate are non-owning back references. alternate points at
// the fiber from the last committed tree that this one replaces, and is
// cleared on the older generation at commit so only one generation is
// retained.
type Fiber struct {
	Type  element.Type
	Props element.Props

	node      host.Node
	parent    *Fiber
	child     *Fiber
	sibling   *Fiber
	alternate *Fiber
	effect    Effect
	hooks     []*hookCell
}

// Kind reports whether the fiber is a host or component fiber.
func (f *Fiber) Kind() Kind {
	if f.Type.IsComponent() {
		return KindComponent
	}
	return KindHost
}

// Node returns the host node, or nil for component fibers and host fibers
// that have not been processed yet.
func (f *Fiber) Node() host.Node { return f.node }

// Parent returns the parent fiber, or nil for the root.
func (f *Fiber) Parent() *Fiber { return f.parent }

// Child returns the first child fiber.
func (f *Fiber) Child() *Fiber { return f.child }

// Sibling returns the next sibling fiber.
func (f *Fiber) Sibling() *Fiber { return f.sibling }

// Alternate returns the committed fiber this one was reconciled against.
func (f *Fiber) Alternate() *Fiber { return f.alternate }

// Effect returns the effect recorded for the fiber.
func (f *Fiber) Effect() Effect { return f.effect }

// HookCount returns the number of hooks the component called on its last
// render.
func (f *Fiber) HookCount() int { return len(f.hooks) }

// Children returns the child fibers in order.
func (f *Fiber) Children() []*Fiber {
	var out []*Fiber
	for c := f.child; c != nil; c = c.sibling {
		out = append(out, c)
	}
	return out
}

// label renders the fiber for Dump.
func (f *Fiber) label() string {
	switch {
	case f.parent == nil && f.Type == (element.Type{}):
		return "#root"
	case f.Type.IsComponent():
		return "<" + f.Type.Comp.ComponentName() + ">"
	case f.Type.IsText():
		return fmt.Sprintf("%q", f.Props.Lookup(element.NodeValue).String())
	}
	var b strings.Builder
	b.WriteString(f.Type.Tag)
	f.Props.Each(func(name string, v element.Value) {
		if host.IsPlain(name) {
			fmt.Fprintf(&b, " %s=%q", name, v.String())
		}
	})
	return b.String()
}

// Dump renders the tree under f, one fiber per line, indented by depth.
func Dump(f *Fiber) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	dump(&b, f, 0)
	return b.String()
}

func dump(b *strings.Builder, f *Fiber, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(f.label())
	if f.effect != EffectNone {
		fmt.Fprintf(b, " [%s]", f.effect)
	}
	b.WriteByte('\n')
	for c := f.child; c != nil; c = c.sibling {
		dump(b, c, depth+1)
	}
}
