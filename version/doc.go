// Package version reports the build of the pypeline binary.
//
// Release builds set the variables through -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/pypeline/version.Version=1.2.0" ./cmd/pypeline
//
// Development builds fall back to the VCS stamp embedded by the Go toolchain.
package version
