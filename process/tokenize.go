package process

import (
	stderrors "errors"

	"github.com/mattn/go-shellwords"

	"github.com/kbukum/pypeline/errors"
)

// Tokenize splits a command line into an argument vector using shell word
// rules: quotes and backslash escapes are honored, environment variables and
// backticks are left alone.
func Tokenize(line string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	argv, err := p.Parse(line)
	if err != nil {
		return nil, errors.InvalidCommand(line, err)
	}
	if len(argv) == 0 {
		return nil, errors.InvalidCommand(line, stderrors.New("empty command"))
	}
	return argv, nil
}
