package std_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/pypeline/logger"
	"github.com/kbukum/pypeline/pipeline"
	"github.com/kbukum/pypeline/process"
	"github.com/kbukum/pypeline/std"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"-r", "-r"},
		{"", "''"},
		{"a b", "'a b'"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$HOME'"},
		{"{print $1}", "'{print $1}'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, std.Quote(tt.in), tt.in)
	}
}

func TestLineRoundTripsThroughTokenizer(t *testing.T) {
	args := []string{"-F", ":", "{ print $1 }", "it's here"}
	words, err := process.Tokenize(std.Line("awk", args...))
	require.NoError(t, err)
	assert.Equal(t, append([]string{"awk"}, args...), words)
}

func TestBuilders(t *testing.T) {
	f := std.Sort("-r", "-n")
	require.Len(t, f.Stages(), 1)
	assert.Equal(t, "sort -r -n", f.Stages()[0].Line())
	assert.False(t, f.Complete())

	// Each call yields an independent fragment.
	g := std.Sort()
	assert.Equal(t, "sort", g.Stages()[0].Line())
}

func TestNames(t *testing.T) {
	names := std.Names()
	assert.Contains(t, names, "grep")
	assert.Contains(t, names, "zcat")
	assert.Equal(t, "awk", names[0])

	names[0] = "changed"
	assert.Equal(t, "awk", std.Names()[0])
}

func TestOn(t *testing.T) {
	sh := pipeline.NewShell(context.Background(), pipeline.WithLogger(logger.Nop()))
	tbl := std.On(sh)

	var got []string
	f, err := tbl.Command("sort", "-r").Pipe(tbl.Builder("head")("-n", "2"))
	require.NoError(t, err)
	f, err = f.From([]string{"a", "c", "b"})
	require.NoError(t, err)
	_, err = f.To(&got)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, got)
}

func TestAvailable(t *testing.T) {
	assert.True(t, std.Available("sh"))
	assert.False(t, std.Available("definitely-not-installed-xyz"))
}
