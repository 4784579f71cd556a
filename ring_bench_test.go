package ringqueue

import (
	"testing"
)

func BenchmarkPushPop(b *testing.B) {
	r, _ := NewRing[int](1024)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Push(i)
		r.Pop()
	}
}

func BenchmarkFillDrain(b *testing.B) {
	r, _ := NewRing[int](64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !r.Push(i) {
			for !r.IsEmpty() {
				r.Pop()
			}
			r.Push(i)
		}
	}
}

func BenchmarkToSlice(b *testing.B) {
	r, _ := NewRing[int](4096)
	for i := 0; i < 4096; i++ {
		r.Push(i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.ToSlice()
	}
}
