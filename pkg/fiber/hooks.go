package fiber

import (
	"github.com/vango-dev/didact/internal/errors"
)

// hookCell is the persistent state of one hook call site.
type hookCell struct {
	state any
	queue []func(any) any
}

// Hooks is the per-render hook cursor handed to a component. It is only
// valid while the component function is running.
type Hooks struct {
	r      *Reconciler
	fiber  *Fiber
	index  int
	active bool
}

func (h *Hooks) begin(name string) {
	if h == nil || !h.active {
		errors.Fault(errors.CodeHookOutsideRender, "%s called with an inactive hook handle", name)
	}
}

// UseState returns the current state of the hook at this call position and
// a setter. On the first render the state is initial. Actions passed to the
// setter are queued and applied in order on the next render, which the
// setter schedules.
func UseState[T any](h *Hooks, initial T) (T, func(action func(T) T)) {
	h.begin("UseState")
	f := h.fiber

	cell := &hookCell{state: initial}
	if alt := f.alternate; alt != nil && h.index < len(alt.hooks) {
		old := alt.hooks[h.index]
		state, ok := stateAs[T](old.state)
		if !ok {
			errors.Fault(errors.CodeHookTypeChanged, "%s hook %d: previous state is %T, now %T",
				f.Type, h.index, old.state, initial)
		}
		for _, action := range old.queue {
			state, _ = stateAs[T](action(state))
		}
		cell.state = state
	}
	f.hooks = append(f.hooks, cell)
	h.index++

	r := h.r
	set := func(action func(T) T) {
		cell.queue = append(cell.queue, func(s any) any {
			v, _ := stateAs[T](s)
			return action(v)
		})
		r.scheduleUpdate()
	}
	state, _ := stateAs[T](cell.state)
	return state, set
}

// stateAs converts a stored state back to T. A nil interface is accepted
// only when T is itself an interface type.
func stateAs[T any](v any) (T, bool) {
	if v == nil {
		var zero T
		return zero, any(zero) == nil
	}
	t, ok := v.(T)
	return t, ok
}

// Set returns an action that replaces the state with v.
func Set[T any](v T) func(T) T {
	return func(T) T { return v }
}
