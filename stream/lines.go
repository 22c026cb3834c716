package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// maxLineSize bounds a single record read from a byte stream.
const maxLineSize = 16 * 1024 * 1024

// Lines reads newline-terminated records from r. Records do not include the
// trailing newline; a final line without one is still returned. Closing the
// iterator closes r when it implements io.Closer.
func Lines(r io.Reader) Iterator[string] {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineIter{scanner: sc, source: r}
}

type lineIter struct {
	scanner *bufio.Scanner
	source  io.Reader
	closed  bool
}

func (it *lineIter) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if it.closed || !it.scanner.Scan() {
		return "", false, it.scanner.Err()
	}
	return strings.TrimSuffix(it.scanner.Text(), "\r"), true, nil
}

func (it *lineIter) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if c, ok := it.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteLines drains it into w, writing each record followed by a newline.
// It returns the number of records written. The iterator is closed; w is not.
func WriteLines(ctx context.Context, it Iterator[string], w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	err := ForEach(ctx, it, func(_ context.Context, line string) error {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		n++
		return nil
	})
	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}
	return n, err
}
