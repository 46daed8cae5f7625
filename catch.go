// Package catch stops panics at a boundary and hands them back as values.
//
// The panics subpackage holds the boundary itself. WaitGroup, and the pool,
// iter and stream subpackages built on it, place that boundary at every
// goroutine they spawn, so a panic in a child goroutine is carried back to
// the goroutine that waits on it instead of crashing the process.
package catch
