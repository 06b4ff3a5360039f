package cancel_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/randomizedcoder/go-bounded-queue/internal/cancel"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkBool bool
var sinkInt int

// Workers poll Done() at every loop boundary, so its cost is per item.

func BenchmarkCancel_Done(b *testing.B) {
	testCases := []struct {
		name string
		c    cancel.Canceler
	}{
		{"Context", cancel.NewContext(context.Background())},
		{"Atomic", cancel.NewAtomic()},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			var result bool
			for i := 0; i < b.N; i++ {
				result = tc.c.Done()
			}
			sinkBool = result
		})
	}
}

func BenchmarkCancel_Context_Done_Parallel(b *testing.B) {
	c := cancel.NewContext(context.Background())
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		var result bool
		for pb.Next() {
			result = c.Done()
		}
		_ = result
	})
}

// BenchmarkGroup_CancelAll measures shutdown fan-out for a harness-sized
// group of worker handles.
func BenchmarkGroup_CancelAll(b *testing.B) {
	for _, n := range []int{2, 16, 128} {
		b.Run(fmt.Sprintf("N%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				var g cancel.Group
				for j := 0; j < n; j++ {
					g.Add(cancel.NewContext(context.Background()))
				}
				b.StartTimer()
				sinkInt = g.CancelAll()
			}
		})
	}
}
