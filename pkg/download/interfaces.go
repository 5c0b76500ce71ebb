//go:generate mockgen -destination=./mocks/download.go -package=mocks . Manager

package download

import (
	"context"
	"net/url"
)

// Manager defines the interface for downloading remote package archives.
// It replaces ad-hoc HTTP downloading with a higher-level, testable API
// that supports reuse of already-downloaded files and integrity verification.
type Manager interface {
	// Fetch downloads a single item into opts.Dir and returns the absolute
	// local file path. An existing non-empty file at the target path is
	// reused without downloading.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one remote resource to download.
type Item struct {
	URL      *url.URL // source URL to download
	Checksum string   // optional hex-encoded SHA-256 checksum; if provided, will be verified
	Filename string   // optional preferred filename; if empty, a name will be derived
}

// Options control the behavior of the download manager.
type Options struct {
	Dir   string // destination directory. Must be absolute.
	Tries int    // retry budget; if <=0 a single attempt is made
}
