// Package version reports the sessionscribe build.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/sessionscribe/version.Version=1.2.0" ./cmd/sessionscribe
//
// Unset values fall back to the module's embedded VCS build settings.
package version
