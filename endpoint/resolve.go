package endpoint

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/stream"
)

// Mode selects how an endpoint is opened.
type Mode int

const (
	// Read opens the endpoint as a pipeline input.
	Read Mode = iota
	// Write opens the endpoint as an output, truncating existing files.
	Write
	// Append opens the endpoint as an output, appending to existing files.
	Append
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// Compression suffixes recognized on path endpoints.
const (
	SuffixGzip = ".gz"
	SuffixZstd = ".zst"
)

// Stream is a resolved endpoint. Exactly one of Reader, Writer, Records or
// Sink is set, unless the stream is a discard.
type Stream struct {
	Reader  io.Reader
	Writer  io.Writer
	Records stream.Iterator[string]
	Sink    SinkFunc

	name    string
	closers []io.Closer
	once    sync.Once
	err     error
}

// IsDiscard reports whether the stream carries nothing.
func (s *Stream) IsDiscard() bool {
	return s.Reader == nil && s.Writer == nil && s.Records == nil && s.Sink == nil
}

// Name identifies the stream in logs.
func (s *Stream) Name() string { return s.name }

// Close releases everything the resolver opened. Standard streams and
// borrowed handles are left open. Safe to call more than once.
func (s *Stream) Close() error {
	s.once.Do(func() {
		for _, c := range s.closers {
			if err := c.Close(); err != nil && s.err == nil {
				s.err = err
			}
		}
	})
	return s.err
}

// Discarded returns a stream that reads nothing and writes nowhere.
func Discarded() *Stream { return &Stream{name: "null"} }

// Resolve opens e in the given mode. Unset and Null resolve to a discard;
// pipe junctions are handled by the engine before an endpoint is resolved.
func (e Endpoint) Resolve(mode Mode) (*Stream, error) {
	switch e.kind {
	case Unset, Null:
		return Discarded(), nil
	case Path:
		return openPath(e.path, mode)
	case Handle:
		return e.resolveHandle(mode)
	case Sequence:
		if mode != Read {
			return nil, errors.InvalidEndpoint(e.kind, "a record sequence can only be read")
		}
		it := e.records()
		s := &Stream{Records: it, name: "sequence"}
		s.closers = []io.Closer{it}
		return s, nil
	case Sink:
		if mode == Read {
			return nil, errors.InvalidEndpoint(e.sink, "a sink function cannot be read")
		}
		return &Stream{Sink: e.sink, name: "sink"}, nil
	default:
		return nil, errors.InvalidEndpoint(e, "unknown endpoint kind")
	}
}

func (e Endpoint) resolveHandle(mode Mode) (*Stream, error) {
	s := &Stream{name: e.String()}
	var h any
	if mode == Read {
		if e.reader == nil {
			return nil, errors.InvalidEndpoint(e.writer, "handle is not readable")
		}
		s.Reader, h = e.reader, e.reader
	} else {
		if e.writer == nil {
			return nil, errors.InvalidEndpoint(e.reader, "handle is not writable")
		}
		s.Writer, h = e.writer, e.writer
	}
	if c, ok := h.(io.Closer); ok && !e.borrowed && !isStdStream(h) {
		s.closers = append(s.closers, c)
	}
	return s, nil
}

func openPath(p string, mode Mode) (*Stream, error) {
	s := &Stream{name: p}
	ext := strings.ToLower(filepath.Ext(p))

	if mode == Read {
		f, err := os.Open(p)
		if err != nil {
			return nil, FromOSError(p, mode, err)
		}
		switch ext {
		case SuffixGzip:
			zr, err := gzip.NewReader(f)
			if err != nil {
				_ = f.Close()
				return nil, errors.EndpointUnavailable(p, err)
			}
			s.Reader = zr
			s.closers = []io.Closer{zr, f}
		case SuffixZstd:
			zr, err := zstd.NewReader(f)
			if err != nil {
				_ = f.Close()
				return nil, errors.EndpointUnavailable(p, err)
			}
			rc := zr.IOReadCloser()
			s.Reader = rc
			s.closers = []io.Closer{rc, f}
		default:
			s.Reader = f
			s.closers = []io.Closer{f}
		}
		return s, nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(p, flags, 0o644)
	if err != nil {
		return nil, FromOSError(p, mode, err)
	}
	switch ext {
	case SuffixGzip:
		zw := gzip.NewWriter(f)
		s.Writer = zw
		s.closers = []io.Closer{zw, f}
	case SuffixZstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.EndpointUnavailable(p, err)
		}
		s.Writer = zw
		s.closers = []io.Closer{zw, f}
	default:
		s.Writer = f
		s.closers = []io.Closer{f}
	}
	return s, nil
}
