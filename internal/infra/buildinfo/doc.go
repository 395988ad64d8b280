// Package buildinfo exposes build-time version information for gamesvc.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/gamesvc-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Unset values fall back to the module and VCS data embedded by the Go
// toolchain.
package buildinfo
