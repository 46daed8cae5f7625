package stream

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/catch/panics"
)

func ExampleStream() {
	s := New()
	for i := 0; i < 5; i++ {
		i := i
		s.Go(func() Callback {
			i *= 2
			return func() { fmt.Println(i) }
		})
	}
	s.Wait()
	// Output:
	// 0
	// 2
	// 4
	// 6
	// 8
}

func TestStream(t *testing.T) {
	t.Parallel()

	t.Run("simple", func(t *testing.T) {
		t.Parallel()
		s := New()
		var res []int
		for i := 0; i < 5; i++ {
			i := i
			s.Go(func() Callback {
				i *= 2
				return func() {
					res = append(res, i)
				}
			})
		}
		s.Wait()
		require.Equal(t, []int{0, 2, 4, 6, 8}, res)
	})

	t.Run("callbacks keep submission order", func(t *testing.T) {
		t.Parallel()
		s := New().WithMaxGoroutines(4)
		var res []int
		for i := 0; i < 20; i++ {
			i := i
			s.Go(func() Callback {
				// Later tasks finish first.
				time.Sleep(time.Duration(20-i) * 100 * time.Microsecond)
				return func() { res = append(res, i) }
			})
		}
		s.Wait()
		expected := make([]int, 20)
		for i := range expected {
			expected[i] = i
		}
		require.Equal(t, expected, res)
	})

	t.Run("max goroutines", func(t *testing.T) {
		t.Parallel()
		s := New().WithMaxGoroutines(5)
		var currentTaskCount atomic.Int64
		var currentMax atomic.Int64
		for i := 0; i < 50; i++ {
			s.Go(func() Callback {
				curr := currentTaskCount.Add(1)
				if curr > currentMax.Load() {
					currentMax.Store(curr)
				}
				time.Sleep(time.Millisecond)
				currentTaskCount.Add(-1)
				return func() {}
			})
		}
		s.Wait()
		require.LessOrEqual(t, currentMax.Load(), int64(5))
	})

	t.Run("nil callback is skipped", func(t *testing.T) {
		t.Parallel()
		s := New()
		s.Go(func() Callback { return nil })
		require.NotPanics(t, s.Wait)
	})

	t.Run("panic in task is propagated", func(t *testing.T) {
		t.Parallel()
		s := New()
		var callbacks atomic.Int64
		s.Go(func() Callback {
			return func() { callbacks.Add(1) }
		})
		s.Go(func() Callback {
			panic("task failed")
		})
		s.Go(func() Callback {
			return func() { callbacks.Add(1) }
		})
		require.Panics(t, s.Wait)
		require.Equal(t, int64(2), callbacks.Load())
	})

	t.Run("panic in callback is propagated", func(t *testing.T) {
		t.Parallel()
		s := New()
		var callbacks atomic.Int64
		s.Go(func() Callback {
			return func() { panic("callback failed") }
		})
		s.Go(func() Callback {
			return func() { callbacks.Add(1) }
		})
		recovered := panics.Try(s.Wait)
		require.NotNil(t, recovered)
		require.Contains(t, recovered.String(), "callback failed")
		require.Equal(t, int64(1), callbacks.Load())
	})

	t.Run("reusable after a panicking round", func(t *testing.T) {
		t.Parallel()
		s := New().WithMaxGoroutines(2)
		s.Go(func() Callback { panic("first round") })
		require.Panics(t, s.Wait)

		var res []int
		for i := 0; i < 3; i++ {
			i := i
			s.Go(func() Callback {
				return func() { res = append(res, i) }
			})
		}
		require.NotPanics(t, s.Wait)
		require.Equal(t, []int{0, 1, 2}, res)

		s.Go(func() Callback {
			return func() { panic("callback round") }
		})
		require.Panics(t, s.Wait)
		s.Go(func() Callback { return nil })
		require.NotPanics(t, s.Wait)
	})

	t.Run("reusable after wait", func(t *testing.T) {
		t.Parallel()
		s := New().WithMaxGoroutines(2)
		var res []int
		for round := 0; round < 2; round++ {
			for i := 0; i < 3; i++ {
				i := i
				s.Go(func() Callback {
					return func() { res = append(res, i) }
				})
			}
			s.Wait()
		}
		require.Equal(t, []int{0, 1, 2, 0, 1, 2}, res)
	})
}

func BenchmarkStream(b *testing.B) {
	b.Run("startup and teardown", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			s := New()
			s.Go(func() Callback { return func() {} })
			s.Wait()
		}
	})

	b.Run("per task", func(b *testing.B) {
		s := New()
		for i := 0; i < b.N; i++ {
			s.Go(func() Callback { return func() {} })
		}
		s.Wait()
	})
}
