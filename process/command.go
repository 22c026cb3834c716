package process

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/pypeline/errors"
)

// DefaultGracePeriod is how long a canceled process gets between SIGTERM and SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// Command configures a subprocess to execute.
type Command struct {
	// Line is the command line the command was parsed from, used as its identity.
	Line string
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// Stdout receives the process output. Nil discards it.
	Stdout io.Writer
	// Stderr receives the process error stream. Nil discards it.
	Stderr io.Writer
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

// Parse tokenizes a command line into a Command. No shell is involved.
func Parse(line string) (Command, error) {
	argv, err := Tokenize(line)
	if err != nil {
		return Command{}, err
	}
	return Command{Line: line, Binary: argv[0], Args: argv[1:]}, nil
}

// String returns the identity of the command.
func (c Command) String() string {
	if c.Line != "" {
		return c.Line
	}
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}

// Check verifies that the executable exists and is runnable without starting it.
func (c Command) Check() error {
	if c.Binary == "" {
		return errors.InvalidCommand(c.String(), stderrors.New("binary is required"))
	}
	bin := c.Binary
	if strings.ContainsRune(bin, filepath.Separator) && !filepath.IsAbs(bin) && c.Dir != "" {
		bin = filepath.Join(c.Dir, bin)
	}
	if _, err := exec.LookPath(bin); err != nil {
		switch {
		case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist):
			return errors.NotFound("executable", c.Binary).WithCause(err)
		case stderrors.Is(err, fs.ErrPermission):
			return errors.PermissionDenied(c.Binary, "execute").WithCause(err)
		default:
			return errors.InvalidCommand(c.String(), err)
		}
	}
	return nil
}
