// Package fiber implements an incremental reconciliation engine.
//
// A Reconciler turns an element tree into a tree of fibers, one per element,
// and keeps a host tree in sync with it through a host.Adapter. Work is
// split into units (one fiber each) and run in idle slices handed out by a
// host.IdleScheduler, so a large render never blocks the host for longer
// than one unit. Host mutations are collected as effects and applied in a
// single synchronous commit once every unit of a pass has run.
//
// # Components
//
// Components are plain Go functions registered with Define:
//
//	var Counter = fiber.Define("Counter", func(h *fiber.Hooks, props element.Props) *element.Element {
//	    count, setCount := fiber.UseState(h, 1)
//	    return element.H("h1", []element.Prop{
//	        element.On("click", func(element.Event) {
//	            setCount(func(c int) int { return c + 1 })
//	        }),
//	    }, "Count: ", count)
//	})
//
// Hooks are matched by call position, so a component must call the same
// hooks in the same order on every render. Violations panic with a coded
// *errors.DidactError.
//
// # Threading
//
// A Reconciler is not safe for concurrent use. Render, state setters and
// the scheduler's idle callbacks must all run on one goroutine, typically
// an idle.Loop.
package fiber
