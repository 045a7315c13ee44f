// Package progress carries batch progress from download workers to
// whatever is presenting it.
//
// Workers only ever see the Reporter interface. Front ends pick an
// implementation:
//
//   - Queue buffers events without blocking the worker and hands them to a
//     single consumer, which is how the TUI receives them.
//   - Bar draws a terminal progress bar for the CLI.
//   - Tracker keeps the latest BatchProgress snapshot and forwards events.
//   - Func and Discard adapt plain functions and tests.
//
// Leveled messages (warnings, errors, verbose output) go through Report,
// which falls back to Status for reporters that do not understand levels.
package progress
