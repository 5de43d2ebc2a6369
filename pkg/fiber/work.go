package fiber

import (
	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
)

// performUnitOfWork processes f and returns the next fiber in depth-first
// order: the first child, else the nearest sibling of f or an ancestor,
// else nil.
func (r *Reconciler) performUnitOfWork(f *Fiber) *Fiber {
	if f.Kind() == KindComponent {
		r.updateComponent(f)
	} else {
		r.updateHost(f)
	}

	if f.child != nil {
		return f.child
	}
	for next := f; next != nil; next = next.parent {
		if next.sibling != nil {
			return next.sibling
		}
	}
	return nil
}

func (r *Reconciler) updateComponent(f *Fiber) {
	comp, ok := f.Type.Comp.(*Component)
	if !ok {
		errors.Fault(errors.CodeUnknownComponent, "component type %T", f.Type.Comp)
	}

	f.hooks = nil
	h := &Hooks{r: r, fiber: f, active: true}
	child := func() *element.Element {
		defer func() { h.active = false }()
		return comp.render(h, f.Props)
	}()

	if alt := f.alternate; alt != nil && len(f.hooks) != len(alt.hooks) {
		errors.Fault(errors.CodeHookCountChanged, "%s called %d hooks, previously %d",
			f.Type, len(f.hooks), len(alt.hooks))
	}

	var children []*element.Element
	if child != nil {
		children = []*element.Element{child}
	}
	r.reconcileChildren(f, children)
}

// updateHost creates the node of a new host fiber. The root fiber keeps the
// container it was given, even a nil one.
func (r *Reconciler) updateHost(f *Fiber) {
	if f.node == nil && f.parent != nil {
		f.node = r.adapter.CreateNode(f.Type.Tag)
		r.updateProps(f.node, element.Props{}, f.Props)
	}
	r.reconcileChildren(f, f.Props.Children)
}

// reconcileChildren diffs elements against the children of wip's alternate
// by position. A matching type reuses the old node with an update; anything
// else places a new fiber and deletes the old one.
func (r *Reconciler) reconcileChildren(wip *Fiber, elements []*element.Element) {
	var old *Fiber
	if wip.alternate != nil {
		old = wip.alternate.child
	}
	wip.child = nil

	var prev *Fiber
	for i := 0; i < len(elements) || old != nil; i++ {
		var el *element.Element
		if i < len(elements) {
			el = elements[i]
		}
		same := el != nil && old != nil && el.Type == old.Type

		var nf *Fiber
		switch {
		case same:
			nf = &Fiber{
				Type:      old.Type,
				Props:     el.Props,
				node:      old.node,
				parent:    wip,
				alternate: old,
				effect:    EffectUpdate,
			}
		case el != nil:
			nf = &Fiber{
				Type:   el.Type,
				Props:  el.Props,
				parent: wip,
				effect: EffectPlacement,
			}
		}

		if old != nil && !same {
			old.effect = EffectDeletion
			r.deletions = append(r.deletions, old)
		}
		if old != nil {
			old = old.sibling
		}

		if nf == nil {
			continue
		}
		if prev == nil {
			wip.child = nf
		} else {
			prev.sibling = nf
		}
		prev = nf
	}
}
