// Package idle provides host.IdleScheduler implementations.
//
// Manual measures slices in steps rather than time, which makes render work
// deterministic: a slice of N steps lets the work loop perform exactly N
// units of work before it yields. Tests and synchronous tools use it.
//
// Loop is a small single-goroutine event loop. External tasks (for example
// events arriving from a network connection) are submitted from any
// goroutine and always run before pending idle callbacks, so input is never
// stuck behind render work. Each idle callback gets a wall-clock slice.
package idle
