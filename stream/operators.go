package stream

import "context"

// funcIter adapts a pair of closures to Iterator.
type funcIter[T any] struct {
	next  func(context.Context) (T, bool, error)
	close func() error
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) { return it.next(ctx) }
func (it *funcIter[T]) Close() error                              { return it.close() }

// Map transforms each record using fn. An error from fn ends the stream.
func Map[I, O any](src Iterator[I], fn func(context.Context, I) (O, error)) Iterator[O] {
	return &funcIter[O]{
		next: func(ctx context.Context) (O, bool, error) {
			var zero O
			v, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return zero, false, err
			}
			out, err := fn(ctx, v)
			if err != nil {
				return zero, false, err
			}
			return out, true, nil
		},
		close: src.Close,
	}
}

// Filter keeps the records for which keep returns true.
func Filter[T any](src Iterator[T], keep func(T) bool) Iterator[T] {
	return &funcIter[T]{
		next: func(ctx context.Context) (T, bool, error) {
			for {
				v, ok, err := src.Next(ctx)
				if err != nil || !ok || keep(v) {
					return v, ok && err == nil, err
				}
			}
		},
		close: src.Close,
	}
}

// FlatMap expands each record into an iterator and yields their records in
// order. Each inner iterator is closed once exhausted.
func FlatMap[I, O any](src Iterator[I], fn func(context.Context, I) (Iterator[O], error)) Iterator[O] {
	var inner Iterator[O]
	return &funcIter[O]{
		next: func(ctx context.Context) (O, bool, error) {
			var zero O
			for {
				if inner != nil {
					v, ok, err := inner.Next(ctx)
					if err != nil {
						return zero, false, err
					}
					if ok {
						return v, true, nil
					}
					_ = inner.Close()
					inner = nil
				}
				v, ok, err := src.Next(ctx)
				if err != nil || !ok {
					return zero, false, err
				}
				if inner, err = fn(ctx, v); err != nil {
					return zero, false, err
				}
			}
		},
		close: func() error {
			if inner != nil {
				_ = inner.Close()
			}
			return src.Close()
		},
	}
}

// Tap passes records through unchanged after calling fn on each.
func Tap[T any](src Iterator[T], fn func(context.Context, T) error) Iterator[T] {
	return Map(src, func(ctx context.Context, v T) (T, error) {
		return v, fn(ctx, v)
	})
}

// Reduce folds the whole source into one value, yielded once the source is
// exhausted.
func Reduce[T, R any](src Iterator[T], acc R, fn func(R, T) R) Iterator[R] {
	done := false
	return &funcIter[R]{
		next: func(ctx context.Context) (R, bool, error) {
			var zero R
			if done {
				return zero, false, nil
			}
			for {
				v, ok, err := src.Next(ctx)
				if err != nil {
					return zero, false, err
				}
				if !ok {
					done = true
					return acc, true, nil
				}
				acc = fn(acc, v)
			}
		},
		close: src.Close,
	}
}

// Concat yields the records of each iterator in turn. Close closes all of them.
func Concat[T any](iters ...Iterator[T]) Iterator[T] {
	i := 0
	return &funcIter[T]{
		next: func(ctx context.Context) (T, bool, error) {
			for ; i < len(iters); i++ {
				v, ok, err := iters[i].Next(ctx)
				if err != nil || ok {
					return v, ok, err
				}
			}
			var zero T
			return zero, false, nil
		},
		close: func() error {
			var first error
			for _, it := range iters {
				if err := it.Close(); err != nil && first == nil {
					first = err
				}
			}
			return first
		},
	}
}
