// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() directly. The daily update date is derived from it, so tests can
// pin a run to any calendar day with a Fixed clock.
package clock
