//go:generate mockgen -destination=./mocks/orchestrator.go -package=mocks . MetadataProvider,Downloader,Unpacker,Validator

package orchestrator

import (
	"context"

	"github.com/glorpus-work/pkgvet/pkg/download"
	"github.com/glorpus-work/pkgvet/pkg/metadata"
)

// MetadataProvider is the subset of the metadata provider used by the orchestrator.
type MetadataProvider interface {
	Load(name string) (*metadata.Record, error)
	SnapshotPath(name string) string
	LoadSnapshot(name string) (*metadata.Record, error)
}

// Downloader handles archive downloading.
type Downloader interface {
	Fetch(ctx context.Context, item download.Item, opts download.Options) (string, error)
}

// Unpacker handles archive extraction.
type Unpacker interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Validator is the external validation capability invoked after the field
// checks pass.
type Validator interface {
	Validate(ctx context.Context, unpackedDir, pkgName string) error
}

// Orchestrator ties metadata, download, extraction and validation together
// for per-package validation runs.
type Orchestrator struct {
	Metadata  MetadataProvider
	DL        Downloader
	Archive   Unpacker
	Validator Validator
	Hooks     Hooks // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase   string // downloading|unpacking|warning|done|error
	Package string
	Msg     string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control a validation batch.
type Options struct {
	ArchiveDir string // where downloaded archives are stored
	UnpackDir  string // shared extraction staging directory
	Tries      int    // download retry budget per archive
}

// Result is the outcome of one package's validation run.
type Result struct {
	Package string
	Passed  bool
}
