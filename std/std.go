package std

import (
	"os/exec"
	"strings"

	"github.com/kbukum/pypeline/pipeline"
)

// Builder returns a process fragment for one executable with args appended.
type Builder func(args ...string) *pipeline.Fragment

// Table builds commands on a specific shell.
type Table struct {
	shell *pipeline.Shell
}

// On returns a table bound to sh. A nil shell means the default shell at
// the time each command is built.
func On(sh *pipeline.Shell) Table {
	return Table{shell: sh}
}

// Command returns a fragment running name with args.
func (t Table) Command(name string, args ...string) *pipeline.Fragment {
	sh := t.shell
	if sh == nil {
		sh = pipeline.DefaultShell()
	}
	return sh.Command(Line(name, args...))
}

// Builder returns a Builder for name on this table's shell.
func (t Table) Builder(name string) Builder {
	return func(args ...string) *pipeline.Fragment { return t.Command(name, args...) }
}

// Line joins name and args into a command line, quoting where needed.
func Line(name string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, Quote(name))
	for _, a := range args {
		words = append(words, Quote(a))
	}
	return strings.Join(words, " ")
}

// Quote returns s as a single shell word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`|&;<>(){}[]*?#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Available reports whether name resolves to an executable on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func cmd(name string) Builder {
	names = append(names, name)
	return On(nil).Builder(name)
}

var names []string

// Names returns the executables in the table, in declaration order.
func Names() []string {
	return append([]string(nil), names...)
}
