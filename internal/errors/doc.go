// Package errors provides structured, coded errors for Didact.
//
// Every error carries a code (e.g., "E002") registered with a category,
// a short message, and a longer explanation. Errors can be extended with
// detail, a suggestion, and a wrapped cause, and printed either as a
// colored terminal block or as a compact single line.
//
// # Error Categories
//
//   - runtime: engine faults raised while rendering or committing
//   - protocol: wire protocol errors (truncated frames, bad payloads)
//   - config: configuration file errors
//   - cli: command line usage errors
//
// # Faults
//
// Programming errors detected by the fiber engine (calling a hook outside a
// component, changing the number of hooks between renders) are not returned.
// They panic with a *DidactError via Fault, which fails fast the same way a
// nil dereference would, but with a message that names the problem:
//
//	panic: E002: Hook count changed between renders
//
// Recover and inspect them with AsFault:
//
//	defer func() {
//	    if de, ok := errors.AsFault(recover()); ok {
//	        fmt.Println(de.Format())
//	    }
//	}()
package errors
