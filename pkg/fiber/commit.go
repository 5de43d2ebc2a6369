package fiber

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
)

// commitRoot applies every effect of the finished pass to the host and
// makes the work-in-progress tree current.
func (r *Reconciler) commitRoot() {
	start := time.Now()
	root := r.wipRoot
	stats := CommitStats{
		Pass:    r.pass.id,
		Trigger: r.pass.trigger,
		Units:   r.pass.units,
		Slices:  r.pass.slices,
	}

	defer func() {
		if rec := recover(); rec != nil {
			var err error
			if de, ok := errors.AsFault(rec); ok {
				err = de
			} else {
				err = fmt.Errorf("%v", rec)
			}
			r.logger.Error("commit failed", "pass", stats.Pass, "error", err)
			r.endPass("failed", err)
			panic(rec)
		}
	}()

	for _, f := range r.deletions {
		r.commitDeletion(f, r.hostParentOf(f))
		stats.Deletions++
	}

	for f := root.child; f != nil; {
		r.commitWork(f, &stats)
		if f.child != nil {
			f = f.child
			continue
		}
		for f != root && f.sibling == nil {
			f = f.parent
		}
		if f == root {
			break
		}
		f = f.sibling
	}

	if root.alternate != nil {
		root.alternate.alternate = nil
	}
	r.currentRoot = root
	r.wipRoot = nil
	r.deletions = nil
	stats.Duration = time.Since(start)
	r.last = stats

	if span := r.pass.span; span != nil {
		span.SetAttributes(
			attribute.String("didact.outcome", "committed"),
			attribute.Int("didact.units", stats.Units),
			attribute.Int("didact.slices", stats.Slices),
			attribute.Int("didact.placements", stats.Placements),
			attribute.Int("didact.updates", stats.Updates),
			attribute.Int("didact.deletions", stats.Deletions),
		)
		span.End()
	}
	r.pass = passState{}
	r.metrics.Commit(stats.Placements, stats.Updates, stats.Deletions, stats.Duration)
	r.logger.Debug("render pass committed",
		"pass", stats.Pass,
		"trigger", stats.Trigger,
		"units", stats.Units,
		"slices", stats.Slices,
		"placements", stats.Placements,
		"updates", stats.Updates,
		"deletions", stats.Deletions,
		"duration", stats.Duration,
	)

	if r.onCommit != nil {
		r.onCommit(stats)
	}
}

func (r *Reconciler) commitWork(f *Fiber, stats *CommitStats) {
	switch f.effect {
	case EffectPlacement:
		stats.Placements++
		if f.node == nil {
			break
		}
		parent := r.hostParentOf(f)
		if ins, ok := r.adapter.(host.Inserter); ok {
			ins.InsertBefore(parent, f.node, hostSibling(f))
		} else {
			r.adapter.AppendChild(parent, f.node)
		}
	case EffectUpdate:
		stats.Updates++
		if f.node != nil {
			r.updateProps(f.node, f.alternate.Props, f.Props)
		}
	}
	if f.alternate != nil {
		f.alternate.alternate = nil
	}
}

// commitDeletion removes the host nodes of f's subtree from parent. A
// component fiber has no node, so its nearest host descendants are removed.
func (r *Reconciler) commitDeletion(f *Fiber, parent host.Node) {
	if f.node != nil {
		r.adapter.RemoveChild(parent, f.node)
		return
	}
	for c := f.child; c != nil; c = c.sibling {
		r.commitDeletion(c, parent)
	}
}

// hostParentOf returns the node of the nearest ancestor that has one.
func (r *Reconciler) hostParentOf(f *Fiber) host.Node {
	for p := f.parent; p != nil; p = p.parent {
		if p.node != nil {
			return p.node
		}
	}
	errors.Fault(errors.CodeNoHostAncestor, "fiber %s", f.label())
	return nil
}

// hostSibling returns the host node that f's node must be inserted before:
// the first node after f in the same host parent that is already attached.
// It returns nil when f belongs at the end.
func hostSibling(f *Fiber) host.Node {
	n := f
search:
	for {
		for n.sibling == nil {
			if n.parent == nil || n.parent.Kind() == KindHost {
				return nil
			}
			n = n.parent
		}
		n = n.sibling
		for n.Kind() == KindComponent {
			if n.effect == EffectPlacement || n.child == nil {
				continue search
			}
			n = n.child
		}
		if n.effect != EffectPlacement && n.node != nil {
			return n.node
		}
	}
}

// updateProps applies the difference between prev and next to node:
// stale listeners are unbound, dropped props removed, new or changed props
// set, and new or changed listeners bound.
func (r *Reconciler) updateProps(node host.Node, prev, next element.Props) {
	prev.Each(func(name string, v element.Value) {
		if !host.IsListener(name) || v.Kind() != element.KindListener {
			return
		}
		if nv, ok := next.Get(name); !ok || !nv.Equal(v) {
			r.adapter.RemoveListener(node, host.EventName(name), v.Listener())
		}
	})
	prev.Each(func(name string, _ element.Value) {
		if host.IsPlain(name) && !next.Has(name) {
			r.adapter.RemoveProperty(node, name)
		}
	})
	next.Each(func(name string, v element.Value) {
		if !host.IsPlain(name) {
			return
		}
		if pv, ok := prev.Get(name); !ok || !pv.Equal(v) {
			r.adapter.SetProperty(node, name, v)
		}
	})
	next.Each(func(name string, v element.Value) {
		if !host.IsListener(name) || v.Listener() == nil {
			return
		}
		if pv, ok := prev.Get(name); !ok || !pv.Equal(v) {
			r.adapter.AddListener(node, host.EventName(name), v.Listener())
		}
	})
}
