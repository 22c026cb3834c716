// Package std provides fragments for common executables.
//
// Every entry builds a fresh single-stage fragment on the default shell:
//
//	f, err := std.Sort("-r").Pipe(std.Head("-n", "5"))
//
// Arguments are quoted so that each one reaches the program as a single
// word. Use On to build the same commands on another shell.
package std
