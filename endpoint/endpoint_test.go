package endpoint

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/stream"
)

func TestFrom_Kinds(t *testing.T) {
	var buf bytes.Buffer
	var collected []string
	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, Null},
		{"path", "in.txt", Path},
		{"file", os.Stdin, Handle},
		{"reader", strings.NewReader("x"), Handle},
		{"writer", &buf, Handle},
		{"lines", []string{"a"}, Sequence},
		{"iterator", stream.Of("a"), Sequence},
		{"seq", func(yield func(string) bool) { yield("a") }, Sequence},
		{"sink func", SinkFunc(func(context.Context, stream.Iterator[string]) error { return nil }), Sink},
		{"plain func", func(context.Context, stream.Iterator[string]) error { return nil }, Sink},
		{"collect", &collected, Sink},
		{"endpoint", Discard(), Null},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := From(tt.value)
			if err != nil {
				t.Fatalf("From(%T) error: %v", tt.value, err)
			}
			if e.Kind() != tt.want {
				t.Errorf("Kind() = %v, want %v", e.Kind(), tt.want)
			}
		})
	}
}

func TestFrom_Invalid(t *testing.T) {
	for _, v := range []any{42, "", struct{}{}} {
		_, err := From(v)
		if !errors.HasCode(err, errors.ErrCodeInvalidEndpoint) {
			t.Errorf("From(%#v) = %v, want INVALID_ENDPOINT", v, err)
		}
	}
}

func TestZeroValueIsUnset(t *testing.T) {
	var e Endpoint
	if !e.IsUnset() {
		t.Error("zero Endpoint should be unset")
	}
}

func TestSame(t *testing.T) {
	var a, b bytes.Buffer
	tests := []struct {
		name string
		x, y Endpoint
		want bool
	}{
		{"null", Discard(), Discard(), true},
		{"same path", FromPath("a"), FromPath("a"), true},
		{"different path", FromPath("a"), FromPath("b"), false},
		{"same writer", FromWriter(&a), FromWriter(&a), true},
		{"different writer", FromWriter(&a), FromWriter(&b), false},
		{"kinds differ", Discard(), FromPath("a"), false},
		{"sequences", FromLines(nil), FromLines(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.x.Same(tt.y); got != tt.want {
				t.Errorf("Same() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_NullIsDiscard(t *testing.T) {
	for _, mode := range []Mode{Read, Write, Append} {
		s, err := Discard().Resolve(mode)
		if err != nil {
			t.Fatal(err)
		}
		if !s.IsDiscard() {
			t.Errorf("mode %v: expected discard", mode)
		}
	}
}

func TestResolve_PathRoundTrip(t *testing.T) {
	for _, name := range []string{"plain.txt", "packed.txt.gz", "packed.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)

			w, err := FromPath(p).Resolve(Write)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := io.WriteString(w.Writer, "alpha\nbeta\n"); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := FromPath(p).Resolve(Read)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			got, err := stream.Collect(context.Background(), stream.Lines(r.Reader))
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, []string{"alpha", "beta"}) {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestResolve_CompressedOnDisk(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.gz")
	w, err := FromPath(p).Resolve(Write)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(w.Writer, "hello\n")
	_ = w.Close()

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Errorf("expected gzip magic, got % x", raw[:min(len(raw), 2)])
	}
}

func TestResolve_AppendVsTruncate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(p, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	write := func(mode Mode) {
		s, err := FromPath(p).Resolve(mode)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = io.WriteString(s.Writer, "new\n")
		_ = s.Close()
	}

	write(Append)
	if got, _ := os.ReadFile(p); string(got) != "old\nnew\n" {
		t.Errorf("append: got %q", got)
	}
	write(Write)
	if got, _ := os.ReadFile(p); string(got) != "new\n" {
		t.Errorf("truncate: got %q", got)
	}
}

func TestResolve_MissingFile(t *testing.T) {
	_, err := FromPath(filepath.Join(t.TempDir(), "missing")).Resolve(Read)
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolve_HandleDirection(t *testing.T) {
	if _, err := FromReader(strings.NewReader("x")).Resolve(Write); !errors.HasCode(err, errors.ErrCodeInvalidEndpoint) {
		t.Errorf("reader resolved for write: %v", err)
	}
	if _, err := FromWriter(&bytes.Buffer{}).Resolve(Read); !errors.HasCode(err, errors.ErrCodeInvalidEndpoint) {
		t.Errorf("writer resolved for read: %v", err)
	}
	if _, err := FromLines(nil).Resolve(Write); err == nil {
		t.Error("sequence resolved for write")
	}
	if _, err := ToFunc(nil).Resolve(Read); err == nil {
		t.Error("sink resolved for read")
	}
}

type trackingWriter struct {
	bytes.Buffer
	closed int
}

func (w *trackingWriter) Close() error {
	w.closed++
	return nil
}

func TestStream_CloseOnce(t *testing.T) {
	w := &trackingWriter{}
	s, err := FromWriter(w).Resolve(Write)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()
	_ = s.Close()
	if w.closed != 1 {
		t.Errorf("closed %d times, want 1", w.closed)
	}
}

func TestStream_BorrowedNotClosed(t *testing.T) {
	w := &trackingWriter{}
	s, err := FromWriter(w).Borrowed().Resolve(Append)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()
	if w.closed != 0 {
		t.Errorf("borrowed handle closed %d times", w.closed)
	}
}

func TestStream_StdStreamsNotClosed(t *testing.T) {
	s, err := FromFile(os.Stdout).Resolve(Write)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.closers) != 0 {
		t.Errorf("stdout registered %d closers", len(s.closers))
	}
}

func TestCollect(t *testing.T) {
	var got []string
	s, err := Collect(&got).Resolve(Write)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Sink(context.Background(), stream.Of("x", "y")); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("got %v", got)
	}
}

func TestFromOSError(t *testing.T) {
	if FromOSError("p", Read, nil) != nil {
		t.Error("nil error should map to nil")
	}
	if err := FromOSError("p", Write, os.ErrPermission); err.Code != errors.ErrCodePermissionDenied {
		t.Errorf("got %v", err.Code)
	}
	if err := FromOSError("p", Read, io.ErrUnexpectedEOF); err.Code != errors.ErrCodeEndpointUnavailable {
		t.Errorf("got %v", err.Code)
	}
}

func TestResolve_SequenceIsReusable(t *testing.T) {
	seq, err := From(func(yield func(string) bool) { _ = yield("a") && yield("b") })
	if err != nil {
		t.Fatal(err)
	}
	for name, e := range map[string]Endpoint{"lines": FromLines([]string{"a", "b"}), "seq": seq} {
		for round := range 2 {
			s, err := e.Resolve(Read)
			if err != nil {
				t.Fatalf("%s round %d: %v", name, round, err)
			}
			got, err := stream.Collect(context.Background(), s.Records)
			if err != nil || strings.Join(got, ",") != "a,b" {
				t.Errorf("%s round %d: got %v, %v", name, round, got, err)
			}
			_ = s.Close()
		}
	}
}
