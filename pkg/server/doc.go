// Package server hosts didact applications over HTTP and WebSocket.
//
// The server renders the application in two ways. GET / returns a static
// HTML snapshot of a fresh render. GET /ws opens a live session: the
// application is rendered into a per-session in-memory document and every
// commit is streamed to the client as a binary mutation batch.
//
// # Session Lifecycle
//
// Each WebSocket connection creates a Session that owns:
//   - An idle.Loop that runs every render pass, event and write
//   - A memhost.Document holding the session's host tree
//   - A fiber.Reconciler rendering the application into that document
//
// The session runs two goroutines. The read goroutine decodes frames and
// submits events to the loop. The loop goroutine dispatches events to
// listeners, runs the work loop and writes frames to the socket. Only the
// loop goroutine touches the document, the reconciler or the socket writer.
//
// # Frames
//
// The first mutation batch of a session carries protocol.FlagSnapshot and
// builds the tree from an empty container. Later batches are deltas. Event
// decode failures and unknown targets are reported with a non-fatal
// protocol.FrameError; a render panic ends the session with a fatal one.
package server
