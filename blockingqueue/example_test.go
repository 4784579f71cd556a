package blockingqueue

import (
	"context"
	"fmt"
	"time"
)

func Example_basic() {
	q, _ := New[string](2)
	go func() {
		// Producer
		q.Put("a")
		q.Put("b")
		q.Put("c") // blocks until the consumer takes "a"
	}()

	fmt.Println(q.Take(), q.Take(), q.Take())
	// Output:
	// a b c
}

func Example_errorHandling() {
	_, err := New[int](0)
	fmt.Println(err)

	q, _ := New[int](1)

	// Context timeout leads to an error from TakeContext.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = q.TakeContext(ctx)
	fmt.Println(IsContextError(err))

	// TryPut and TryTake never block and report via ok.
	fmt.Println(q.TryPut(1))
	fmt.Println(q.TryPut(2)) // full
	if v, ok := q.TryTake(); ok {
		fmt.Println(v, ok)
	}
	if _, ok := q.TryTake(); !ok {
		fmt.Println("empty", ok)
	}
	// Output:
	// blockingqueue: invalid capacity 0, must be positive
	// true
	// true
	// false
	// 1 true
	// empty false
}

func Example_close() {
	q, _ := New[int](4)
	q.Put(1)
	q.Put(2)
	q.Close()

	for {
		v, err := q.TakeContext(context.Background())
		if err != nil {
			fmt.Println(err)
			break
		}
		fmt.Println(v)
	}
	// Output:
	// 1
	// 2
	// blockingqueue: queue closed
}
