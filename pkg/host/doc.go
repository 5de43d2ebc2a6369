// Package host defines the boundary between the fiber engine and the
// platform tree it keeps in sync.
//
// The engine never touches platform nodes directly. It asks an Adapter to
// create nodes, set and remove properties, bind listeners, and attach or
// detach children, and it asks an IdleScheduler for cooperative time slices
// in which to do render work.
//
// Implementations in this module:
//
//   - memhost: an in-memory node tree with a mutation log
//   - idle.Manual: a step-budget scheduler for tests and synchronous use
//   - idle.Loop: a single-goroutine event loop with wall-clock slices
package host
