// Package process starts external commands as pipeline stages.
//
// Command lines are tokenized with shell word rules but never run through a
// shell. Each process is started in its own process group; canceling the
// start context sends SIGTERM to the group and SIGKILL after the grace period.
//
// StartChain connects several commands with OS pipes, stdout to stdin, the
// way a shell does for "a | b | c".
package process
