package stream

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of records.
type Iterator[T any] interface {
	// Next returns the next record, or ok == false once the stream is
	// exhausted. A non-nil error ends the stream.
	Next(ctx context.Context) (v T, ok bool, err error)
	// Close releases the resources behind the stream. Calling it before
	// exhaustion tells the producer to stop.
	Close() error
}

func nopClose() error { return nil }

// FromSlice yields the items in order.
func FromSlice[T any](items []T) Iterator[T] {
	i := 0
	return &funcIter[T]{
		next: func(context.Context) (T, bool, error) {
			if i >= len(items) {
				var zero T
				return zero, false, nil
			}
			i++
			return items[i-1], true, nil
		},
		close: nopClose,
	}
}

// Of yields its arguments in order.
func Of[T any](items ...T) Iterator[T] { return FromSlice(items) }

// Empty returns an exhausted iterator.
func Empty[T any]() Iterator[T] { return FromSlice[T](nil) }

// FromSeq pulls lazily from a range-over-func sequence. Close stops the
// sequence even when it is infinite.
func FromSeq[T any](seq iter.Seq[T]) Iterator[T] {
	next, stop := iter.Pull(seq)
	return &funcIter[T]{
		next: func(ctx context.Context) (T, bool, error) {
			if err := ctx.Err(); err != nil {
				var zero T
				return zero, false, err
			}
			v, ok := next()
			return v, ok, nil
		},
		close: func() error { stop(); return nil },
	}
}

// ForEach calls fn for every record until the stream ends or either side
// fails. The iterator is always closed.
func ForEach[T any](ctx context.Context, it Iterator[T], fn func(context.Context, T) error) error {
	defer it.Close()
	for {
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return err
		}
		if err := fn(ctx, v); err != nil {
			return err
		}
	}
}

// Collect gathers every record into a slice. On error the records read so
// far are returned with it.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	var out []T
	err := ForEach(ctx, it, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// Drain discards every record and reports how many there were.
func Drain[T any](ctx context.Context, it Iterator[T]) (int, error) {
	n := 0
	err := ForEach(ctx, it, func(context.Context, T) error {
		n++
		return nil
	})
	return n, err
}
