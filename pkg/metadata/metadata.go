// Package metadata provides access to recorded package metadata. Each package
// in the distribution tree owns a meta.json with its current recorded state
// and a meta.json.old snapshot of the last validated state.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/pkgvet/pkg/errors"
	"github.com/hashicorp/go-version"
)

// MetaFileName is the per-package metadata file.
const MetaFileName = "meta.json"

// SnapshotFileName is the prior-version metadata snapshot, written the last
// time the package passed validation.
const SnapshotFileName = "meta.json.old"

// Record is the recorded metadata for one package. It is read-only input:
// pkgvet never writes it.
type Record struct {
	Name              string `json:"PackageName,omitempty"`
	Version           string `json:"Version,omitempty"`
	ArchiveURL        string `json:"ArchiveURL"`
	ArchiveFormats    string `json:"ArchiveFormats"`
	ArchiveSHA256     string `json:"ArchiveSHA256"`
	PackageInfoURL    string `json:"PackageInfoURL,omitempty"`
	PackageInfoSHA256 string `json:"PackageInfoSHA256"`
}

// PrimaryFormat returns the first listed archive format (e.g. ".tar.gz").
func (r *Record) PrimaryFormat() (string, error) {
	formats := strings.Fields(r.ArchiveFormats)
	if len(formats) == 0 {
		return "", errors.ErrNoArchiveFormats
	}
	return formats[0], nil
}

// DownloadURL returns the archive download URL: the recorded archive URL with
// the primary format suffix appended.
func (r *Record) DownloadURL() (string, error) {
	format, err := r.PrimaryFormat()
	if err != nil {
		return "", err
	}
	return r.ArchiveURL + format, nil
}

// ArchiveFilename returns the local filename for the archive, derived from
// the last URL path segment plus the primary format suffix.
func (r *Record) ArchiveFilename() (string, error) {
	format, err := r.PrimaryFormat()
	if err != nil {
		return "", err
	}
	base := r.ArchiveURL
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return base + format, nil
}

// GetVersion parses the recorded release version. Returns nil when it is
// absent or unparseable.
func (r *Record) GetVersion() *version.Version {
	v, err := version.NewVersion(r.Version)
	if err != nil {
		return nil
	}
	return v
}

// Provider supplies recorded metadata for packages by name.
type Provider interface {
	// Load returns the current metadata record for the named package.
	Load(name string) (*Record, error)

	// SnapshotPath returns the path where the package's prior-version
	// snapshot is expected.
	SnapshotPath(name string) string

	// LoadSnapshot returns the prior-version snapshot record, or
	// ErrMetadataNotFound when no snapshot exists.
	LoadSnapshot(name string) (*Record, error)
}

// DirProvider reads metadata from a directory tree laid out as
// <root>/<package>/meta.json.
type DirProvider struct {
	Root string
}

// NewDirProvider creates a provider rooted at the given directory.
func NewDirProvider(root string) *DirProvider {
	return &DirProvider{Root: root}
}

// Load reads and parses <root>/<name>/meta.json.
func (p *DirProvider) Load(name string) (*Record, error) {
	path := filepath.Join(p.Root, name, MetaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrMetadataNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	rec, err := parseRecord(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	if rec.Name == "" {
		rec.Name = name
	}
	return rec, nil
}

// SnapshotPath returns <root>/<name>/meta.json.old.
func (p *DirProvider) SnapshotPath(name string) string {
	return filepath.Join(p.Root, name, SnapshotFileName)
}

// LoadSnapshot reads and parses the prior-version snapshot for the named
// package, if present.
func (p *DirProvider) LoadSnapshot(name string) (*Record, error) {
	path := p.SnapshotPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrMetadataNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return parseRecord(data)
}

func parseRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrMetadataParse, err.Error())
	}
	return &rec, nil
}
