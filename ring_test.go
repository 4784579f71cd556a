package ringqueue

import (
	"errors"
	"testing"
)

func mustRing[T any](t *testing.T, capacity int) *Ring[T] {
	t.Helper()
	r, err := NewRing[T](capacity)
	if err != nil {
		t.Fatalf("NewRing(%d): %v", capacity, err)
	}
	return r
}

func TestNewRingRejectsNonPositiveCapacity(t *testing.T) {
	for _, c := range []int{0, -1, -100} {
		r, err := NewRing[int](c)
		if r != nil {
			t.Fatalf("capacity %d: expected nil ring", c)
		}
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Fatalf("capacity %d: err = %v want ErrInvalidCapacity", c, err)
		}
	}
}

func TestFIFO(t *testing.T) {
	r := mustRing[int](t, 4)
	if !r.IsEmpty() {
		t.Fatal("new ring should be empty")
	}
	r.Push(1)
	r.Push(2)
	r.Push(3)

	if r.Len() != 3 {
		t.Fatalf("len = %d want 3", r.Len())
	}
	if v, ok := r.Peek(); !ok || v != 1 {
		t.Fatalf("peek = %v,%v want 1,true", v, ok)
	}
	for i := 1; i <= 3; i++ {
		v, ok := r.Pop()
		if !ok || v != i {
			t.Fatalf("pop = %v,%v want %d,true", v, ok, i)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatal("expected empty after pops")
	}
}

func TestPushFull(t *testing.T) {
	r := mustRing[int](t, 2)
	if !r.Push(1) || !r.Push(2) {
		t.Fatal("expected first two pushes to succeed")
	}
	if !r.IsFull() {
		t.Fatal("expected ring to be full")
	}
	if r.Push(3) {
		t.Fatal("expected push on full ring to fail")
	}
	if got := r.ToSlice(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("contents = %v want [1 2]", got)
	}
}

func TestWraparound(t *testing.T) {
	r := mustRing[int](t, 3)
	next := 0
	want := 0
	// Cycle the cursors several times around the backing slice.
	for round := 0; round < 10; round++ {
		for r.Push(next) {
			next++
		}
		if r.Len() != 3 {
			t.Fatalf("round %d: len = %d want 3", round, r.Len())
		}
		for i := 0; i < 2; i++ {
			v, ok := r.Pop()
			if !ok || v != want {
				t.Fatalf("round %d: pop = %v,%v want %d,true", round, v, ok, want)
			}
			want++
		}
		if r.head < 0 || r.head >= r.Cap() || r.tail < 0 || r.tail >= r.Cap() {
			t.Fatalf("cursor out of range: head=%d tail=%d", r.head, r.tail)
		}
	}
}

func TestToSliceAcrossWrap(t *testing.T) {
	r := mustRing[string](t, 4)
	for _, s := range []string{"a", "b", "c", "d"} {
		r.Push(s)
	}
	r.Pop()
	r.Pop()
	r.Push("e")
	got := r.ToSlice()
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("len(got)=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestPopReleasesSlot(t *testing.T) {
	r := mustRing[*int](t, 2)
	v := new(int)
	r.Push(v)
	if got, _ := r.Pop(); got != v {
		t.Fatal("pop returned a different pointer")
	}
	for i, p := range r.data {
		if p != nil {
			t.Fatalf("slot %d still references a popped value", i)
		}
	}
}

func TestClear(t *testing.T) {
	r := mustRing[int](t, 3)
	r.Push(1)
	r.Push(2)
	r.Pop()
	r.Clear()
	if r.Len() != 0 || !r.IsEmpty() {
		t.Fatalf("len = %d after clear", r.Len())
	}
	if r.Cap() != 3 {
		t.Fatalf("cap = %d want 3", r.Cap())
	}
	for i := 0; i < 3; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d after clear failed", i)
		}
	}
}

func TestCapacityOne(t *testing.T) {
	r := mustRing[int](t, 1)
	if !r.Push(7) {
		t.Fatal("expected push to succeed")
	}
	if r.Push(8) {
		t.Fatal("single slot ring accepted a second value")
	}
	if v, ok := r.Pop(); !ok || v != 7 {
		t.Fatalf("pop = %v,%v want 7,true", v, ok)
	}
	if !r.Push(8) {
		t.Fatal("expected push after pop to succeed")
	}
}
