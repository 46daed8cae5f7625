package panics

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func ExampleTry() {
	recovered := Try(func() { panic("boom") })
	fmt.Println(recovered.Value)

	recovered = Try(func() {})
	fmt.Println(recovered == nil)
	// Output:
	// boom
	// true
}

func TestTry(t *testing.T) {
	t.Parallel()

	t.Run("panics", func(t *testing.T) {
		t.Parallel()

		err := errors.New("SOS")
		recovered := Try(func() { panic(err) })
		require.ErrorIs(t, recovered.AsError(), err)
		require.ErrorAs(t, recovered.AsError(), &err)
		// The exact contents aren't tested because the stacktrace contains local file paths
		// and even the structure of the stacktrace is bound to be unstable over time. Just
		// test a couple of basics.
		require.Contains(t, recovered.String(), "SOS", "formatted panic should contain the panic message")
		require.Contains(t, recovered.String(), "panics.(*Catcher).Try", recovered.String(), "formatted panic should contain the stack trace")
	})

	t.Run("no panic", func(t *testing.T) {
		t.Parallel()

		recovered := Try(func() {})
		require.Nil(t, recovered)
	})

	t.Run("returns the raised value", func(t *testing.T) {
		t.Parallel()

		err := errors.New("boom")
		recovered := Try(func() { panic(err) })
		require.NotNil(t, recovered)
		require.Same(t, err, recovered.Value)
		require.Equal(t, "boom", recovered.Value.(error).Error())
	})

	t.Run("runs exactly once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		require.Nil(t, Try(func() { calls++ }))
		require.Equal(t, 1, calls)

		calls = 0
		require.NotNil(t, Try(func() {
			calls++
			panic("boom")
		}))
		require.Equal(t, 1, calls)
	})

	t.Run("statements after the panic do not run", func(t *testing.T) {
		t.Parallel()

		reached := false
		recovered := Try(func() {
			panic("boom")
			reached = true
		})
		require.NotNil(t, recovered)
		require.False(t, reached)
	})

	t.Run("runtime errors are caught", func(t *testing.T) {
		t.Parallel()

		var m map[string]int
		recovered := Try(func() { m["a"] = 1 })
		require.NotNil(t, recovered)

		var rerr runtime.Error
		require.ErrorAs(t, recovered.AsError(), &rerr)
	})

	t.Run("nil panic is caught", func(t *testing.T) {
		t.Parallel()

		recovered := Try(func() { panic(nil) })
		require.NotNil(t, recovered)
		require.IsType(t, &runtime.PanicNilError{}, recovered.Value)
	})

	t.Run("goexit is not caught", func(t *testing.T) {
		t.Parallel()

		var (
			wg        sync.WaitGroup
			returned  bool
			recovered *RecoveredPanic
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			recovered = Try(runtime.Goexit)
			returned = true
		}()
		wg.Wait()
		require.False(t, returned, "goexit should propagate past Try")
		require.Nil(t, recovered)
	})

	t.Run("nested try stops at the innermost boundary", func(t *testing.T) {
		t.Parallel()

		var inner *RecoveredPanic
		outer := Try(func() {
			inner = Try(func() { panic("inner") })
		})
		require.Nil(t, outer)
		require.Equal(t, "inner", inner.Value)
	})
}

func TestTryErr(t *testing.T) {
	t.Parallel()

	err1 := errors.New("err1")

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, TryErr(func() error { return err1 }), err1)
	})

	t.Run("returns nil", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, TryErr(func() error { return nil }))
	})

	t.Run("converts panic", func(t *testing.T) {
		t.Parallel()
		err := TryErr(func() error { panic(err1) })
		require.ErrorIs(t, err, err1)

		var recovered *ErrRecovered
		require.ErrorAs(t, err, &recovered)
		require.Same(t, err1, recovered.Panic.Value)
	})
}
