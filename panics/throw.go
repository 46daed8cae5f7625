package panics

// thrown marks a panic raised by Throw.
type thrown struct {
	err error
}

// Throw panics with err marked so that it is recognized by Catch.
// Throw(nil) does nothing.
func Throw(err error) {
	if err != nil {
		panic(thrown{err})
	}
}

// Catch executes f and returns the error passed to Throw, if f threw one.
// Only panics raised by Throw are stopped: any other panic value is
// re-raised unchanged, so Catch narrows the boundary to a single family
// of faults where Try stops all of them.
func Catch(f func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if t, ok := r.(thrown); ok {
			err = t.err
			return
		}
		panic(r)
	}()
	f()
	return nil
}
