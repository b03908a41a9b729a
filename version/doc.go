// Package version exposes build information set through -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/errkit/version.Version=1.2.0"
//
// VCS details missing from ldflags are filled from runtime/debug build info.
package version
