package pipeline

import (
	"context"
	"io"
	"iter"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/kbukum/pypeline/stream"
)

// TransformFunc is one step of a native stage. in is nil when the run has
// no upstream source. Returning a nil iterator means the function consumed
// its input and produces nothing.
type TransformFunc func(ctx context.Context, in stream.Iterator[string]) (stream.Iterator[string], error)

// Transform is a named TransformFunc. The name identifies the transform in
// aggregate errors and logs.
type Transform struct {
	Name string
	Fn   TransformFunc
}

func newTransform(name string, fn TransformFunc) Transform {
	if name == "" {
		name = funcName(fn)
	}
	return Transform{Name: name, Fn: fn}
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "<native>"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Generator produces records from seq. Any upstream input is closed unread.
func Generator(seq iter.Seq[string]) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in != nil {
			_ = in.Close()
		}
		return stream.FromSeq(seq), nil
	}
}

// Lines produces the given records.
func Lines(lines ...string) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in != nil {
			_ = in.Close()
		}
		return stream.FromSlice(lines), nil
	}
}

// MapLines rewrites every record with fn.
func MapLines(fn func(string) string) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			return stream.Empty[string](), nil
		}
		return stream.Map(in, func(_ context.Context, s string) (string, error) {
			return fn(s), nil
		}), nil
	}
}

// FilterLines keeps the records for which keep returns true.
func FilterLines(keep func(string) bool) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			return stream.Empty[string](), nil
		}
		return stream.Filter(in, keep), nil
	}
}

// SplitLines replaces every record with the records split returns for it.
func SplitLines(split func(string) []string) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			return stream.Empty[string](), nil
		}
		return stream.FlatMap(in, func(_ context.Context, s string) (stream.Iterator[string], error) {
			return stream.FromSlice(split(s)), nil
		}), nil
	}
}

// TapLines passes records through unchanged after showing each to fn.
// An error from fn fails the run.
func TapLines(fn func(ctx context.Context, line string) error) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			return stream.Empty[string](), nil
		}
		return stream.Tap(in, fn), nil
	}
}

// CountLines replaces its input with a single record holding the number of
// input records.
func CountLines() TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			in = stream.Empty[string]()
		}
		counted := stream.Reduce(in, 0, func(n int, _ string) int { return n + 1 })
		return stream.Map(counted, func(_ context.Context, n int) (string, error) {
			return strconv.Itoa(n), nil
		}), nil
	}
}

// PrependLines yields lines before passing the input through.
func PrependLines(lines ...string) TransformFunc {
	return func(_ context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			return stream.FromSlice(lines), nil
		}
		return stream.Concat(stream.FromSlice(lines), in), nil
	}
}

// Consumer calls fn for every record and produces nothing. The first error
// from fn stops consumption and fails the run.
func Consumer(fn func(ctx context.Context, line string) error) TransformFunc {
	return func(ctx context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
		if in == nil {
			return nil, nil
		}
		return nil, stream.ForEach(ctx, in, fn)
	}
}

type stderrKey struct{}

// StderrFrom returns the error stream configured for the native run
// executing with ctx. Outside a run it returns io.Discard.
func StderrFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return io.Discard
}

func withStderr(ctx context.Context, w io.Writer) context.Context {
	if w == nil {
		return ctx
	}
	return context.WithValue(ctx, stderrKey{}, w)
}
