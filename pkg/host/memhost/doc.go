// Package memhost is an in-memory host tree for the fiber engine.
//
// Document implements host.Adapter over plain Go structs. Every mutation the
// engine performs is appended to a log that callers can drain with
// TakeMutations, which is how tests assert on commit output and how the
// server turns commits into wire patches. Nodes can be serialized to HTML
// and receive events through Dispatch.
package memhost
