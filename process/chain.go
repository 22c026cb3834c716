package process

import (
	"context"
	"io"
	"os"
)

// StartChain launches cmds connected stdout-to-stdin by OS pipes. The first
// command reads stdin and the last writes stdout; the Stdin and Stdout fields
// of the commands themselves are ignored.
//
// Every command yields a handle. A command that fails to start keeps its
// error in the handle and its neighbors see a closed pipe, so the rest of
// the chain still drains and exits. The returned error is the first start
// failure, if any.
func StartChain(ctx context.Context, cmds []Command, stdin io.Reader, stdout io.Writer) ([]*Handle, error) {
	handles := make([]*Handle, 0, len(cmds))
	var firstErr error
	in := stdin
	var prevRead *os.File

	for i, cmd := range cmds {
		cmd.Stdin = in
		var nextRead, curWrite *os.File
		if i == len(cmds)-1 {
			cmd.Stdout = stdout
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				// Out of descriptors: the remaining commands cannot be connected.
				h := &Handle{cmd: cmd, startErr: err}
				handles = append(handles, h)
				if firstErr == nil {
					firstErr = err
				}
				closeFile(prevRead)
				for _, rest := range cmds[i+1:] {
					handles = append(handles, &Handle{cmd: rest, startErr: err})
				}
				return handles, firstErr
			}
			nextRead, curWrite = r, w
			cmd.Stdout = w
		}

		h, err := Start(ctx, cmd)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		handles = append(handles, h)

		// The children hold their own copies now.
		closeFile(prevRead)
		closeFile(curWrite)

		prevRead = nextRead
		if nextRead != nil {
			in = nextRead
		}
	}
	return handles, firstErr
}

func closeFile(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}
