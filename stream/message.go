// Package stream carries end-of-stream through a bounded queue in band.
//
// Values travel as Message, a tagged variant that is either an Item or the
// EndOfStream marker, so no payload value is ever reserved as a sentinel.
// A consumer that receives EndOfStream puts it back before stopping, which
// hands termination on to the next consumer sharing the queue: one marker
// stops any number of consumers.
//
// Several producers share a Channel by counting down: each calls Done when it
// has nothing more to send, and only the last one enqueues the marker.
package stream

// Message is either an Item carrying a value or the EndOfStream marker.
type Message[T any] struct {
	value T
	end   bool
}

// Item wraps v as an ordinary message.
func Item[T any](v T) Message[T] {
	return Message[T]{value: v}
}

// EndOfStream returns the end marker.
func EndOfStream[T any]() Message[T] {
	return Message[T]{end: true}
}

// IsEnd reports whether m is the end marker.
func (m Message[T]) IsEnd() bool { return m.end }

// Value returns the carried value; the zero value for the end marker.
func (m Message[T]) Value() T { return m.value }
