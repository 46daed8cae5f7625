package panics

// Try executes f, catching and returning any panic it might spawn.
// It returns nil if f returned normally.
//
// The recovered panic can be propagated with panic(), or handled as a normal error with
// (*RecoveredPanic).AsError().
func Try(f func()) *RecoveredPanic {
	var c Catcher
	c.Try(f)
	return c.Recovered()
}

// TryErr executes f and returns its error. If f panics, the panic is
// returned as an *ErrRecovered instead.
func TryErr(f func() error) error {
	var err error
	if recovered := Try(func() { err = f() }); recovered != nil {
		return recovered.AsError()
	}
	return err
}
