package endpoint

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"reflect"

	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/stream"
)

// Kind tags the variant held by an Endpoint.
type Kind int

const (
	// Unset means the end has not been specified yet.
	Unset Kind = iota
	// Null explicitly discards output or supplies empty input.
	Null
	// Path is a filesystem location, possibly compressed.
	Path
	// Handle is an already-open byte stream.
	Handle
	// Sequence is an in-memory stream of records.
	Sequence
	// Sink is a function invoked with the realized output records.
	Sink
)

func (k Kind) String() string {
	switch k {
	case Unset:
		return "unset"
	case Null:
		return "null"
	case Path:
		return "path"
	case Handle:
		return "handle"
	case Sequence:
		return "sequence"
	case Sink:
		return "sink"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SinkFunc consumes the records arriving at the end of a pipeline.
type SinkFunc func(ctx context.Context, records stream.Iterator[string]) error

// Endpoint is the source or sink of a pipeline. The zero value is Unset.
type Endpoint struct {
	kind     Kind
	path     string
	reader   io.Reader
	writer   io.Writer
	records  func() stream.Iterator[string]
	sink     SinkFunc
	borrowed bool
}

// Discard returns the Null endpoint.
func Discard() Endpoint { return Endpoint{kind: Null} }

// FromPath returns a path endpoint. Names ending in .gz or .zst are
// transparently (de)compressed.
func FromPath(p string) Endpoint { return Endpoint{kind: Path, path: p} }

// FromReader wraps an open stream for reading.
func FromReader(r io.Reader) Endpoint { return Endpoint{kind: Handle, reader: r} }

// FromWriter wraps an open stream for writing.
func FromWriter(w io.Writer) Endpoint { return Endpoint{kind: Handle, writer: w} }

// FromFile wraps an open file usable in either direction.
func FromFile(f *os.File) Endpoint { return Endpoint{kind: Handle, reader: f, writer: f} }

// FromLines feeds the given records. Every resolution starts from the first
// record, so the endpoint can feed several pipelines.
func FromLines(lines []string) Endpoint {
	return Endpoint{kind: Sequence, records: func() stream.Iterator[string] {
		return stream.FromSlice(lines)
	}}
}

// FromSeq feeds records pulled from seq, restarting it on every resolution.
func FromSeq(seq iter.Seq[string]) Endpoint {
	return Endpoint{kind: Sequence, records: func() stream.Iterator[string] {
		return stream.FromSeq(seq)
	}}
}

// FromIterator feeds records pulled from it. An iterator is consumed by the
// first pipeline that reads it; later resolutions see no records.
func FromIterator(it stream.Iterator[string]) Endpoint {
	return Endpoint{kind: Sequence, records: func() stream.Iterator[string] { return it }}
}

// ToFunc delivers the output records to fn.
func ToFunc(fn SinkFunc) Endpoint { return Endpoint{kind: Sink, sink: fn} }

// Collect appends every output record to dst.
func Collect(dst *[]string) Endpoint {
	return ToFunc(func(ctx context.Context, records stream.Iterator[string]) error {
		return stream.ForEach(ctx, records, func(_ context.Context, line string) error {
			*dst = append(*dst, line)
			return nil
		})
	})
}

// From normalizes a user-supplied value into an Endpoint.
//
// Accepted values: nil (Null), Endpoint, string (path), *os.File, io.Reader,
// io.Writer, []string, stream.Iterator[string], iter.Seq[string], SinkFunc,
// func(context.Context, stream.Iterator[string]) error and *[]string (collect).
func From(v any) (Endpoint, error) {
	switch t := v.(type) {
	case nil:
		return Discard(), nil
	case Endpoint:
		return t, nil
	case *Endpoint:
		if t == nil {
			return Discard(), nil
		}
		return *t, nil
	case string:
		if t == "" {
			return Endpoint{}, errors.InvalidEndpoint(v, "empty path")
		}
		return FromPath(t), nil
	case *os.File:
		if t == nil {
			return Endpoint{}, errors.InvalidEndpoint(v, "nil file")
		}
		return FromFile(t), nil
	case []string:
		return FromLines(t), nil
	case *[]string:
		if t == nil {
			return Endpoint{}, errors.InvalidEndpoint(v, "nil slice pointer")
		}
		return Collect(t), nil
	case stream.Iterator[string]:
		return FromIterator(t), nil
	case iter.Seq[string]:
		return FromSeq(t), nil
	case func(func(string) bool):
		return FromSeq(t), nil
	case SinkFunc:
		return ToFunc(t), nil
	case func(context.Context, stream.Iterator[string]) error:
		return ToFunc(t), nil
	}

	r, isReader := v.(io.Reader)
	w, isWriter := v.(io.Writer)
	if isReader || isWriter {
		return Endpoint{kind: Handle, reader: r, writer: w}, nil
	}
	return Endpoint{}, errors.InvalidEndpoint(v, "unsupported endpoint type")
}

// Kind reports the variant held by e.
func (e Endpoint) Kind() Kind { return e.kind }

// IsUnset reports whether the end has not been specified.
func (e Endpoint) IsUnset() bool { return e.kind == Unset }

// Path returns the filesystem path of a Path endpoint.
func (e Endpoint) Path() string { return e.path }

// Borrowed marks a handle as owned by the caller: it is never closed by the
// stream it resolves to. Used for endpoints shared across executions.
func (e Endpoint) Borrowed() Endpoint {
	e.borrowed = true
	return e
}

// Same reports whether two endpoints denote the same target. Unset and Null
// compare by kind, paths by name, handles by identity. Sequences and sinks
// are never the same as anything.
func (e Endpoint) Same(o Endpoint) bool {
	if e.kind != o.kind {
		return false
	}
	switch e.kind {
	case Unset, Null:
		return true
	case Path:
		return e.path == o.path
	case Handle:
		return sameValue(e.reader, o.reader) && sameValue(e.writer, o.writer)
	default:
		return false
	}
}

func (e Endpoint) String() string {
	switch e.kind {
	case Path:
		return e.path
	case Handle:
		switch {
		case isStdStream(e.reader):
			return e.reader.(*os.File).Name()
		case isStdStream(e.writer):
			return e.writer.(*os.File).Name()
		case e.reader != nil:
			return fmt.Sprintf("handle(%T)", e.reader)
		default:
			return fmt.Sprintf("handle(%T)", e.writer)
		}
	default:
		return e.kind.String()
	}
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

func isStdStream(v any) bool {
	f, ok := v.(*os.File)
	return ok && (f == os.Stdin || f == os.Stdout || f == os.Stderr)
}
