// Package validate implements the metadata field checks performed on an
// unpacked package archive. All checks run independently and accumulate; a
// single failure fails the whole validation but every mismatch is reported.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/pkgvet/internal/logger"
	"github.com/glorpus-work/pkgvet/pkg/fsutil"
	"github.com/glorpus-work/pkgvet/pkg/metadata"
)

// ManifestFileName is the package manifest inside the unpacked tree whose
// hash is recorded in the metadata.
const ManifestFileName = "PackageInfo.g"

// Input carries everything the field checks need for one package.
type Input struct {
	PackageName  string
	UnpackedDir  string           // resolved unpacked directory; may be empty when resolution failed
	ArchivePath  string           // downloaded archive file
	Record       *metadata.Record // current recorded metadata
	Snapshot     *metadata.Record // prior-version snapshot; nil when absent
	SnapshotPath string           // where the snapshot is expected on disk
}

// Report is the outcome of the field checks.
type Report struct {
	Problems []string
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) appendf(format string, args ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Check runs all field checks and returns the accumulated report. Checks
// never short-circuit: a hash mismatch does not stop the snapshot check from
// running, so all failures can be diagnosed from one run.
func Check(in Input) *Report {
	report := &Report{}

	checkManifestHash(in, report)
	checkArchiveHash(in, report)
	checkSnapshot(in, report)

	return report
}

func checkManifestHash(in Input, report *Report) {
	manifestPath := filepath.Join(in.UnpackedDir, ManifestFileName)
	actual, err := fsutil.SHA256File(manifestPath)
	if err != nil {
		logger.Debugf("%s: could not hash %s: %v", in.PackageName, manifestPath, err)
	}
	if !strings.EqualFold(in.Record.PackageInfoSHA256, actual) || actual == "" {
		report.appendf("%s: %s/%s:PackageInfoSHA256 is not the SHA256 of %s, FAILED!",
			in.PackageName, in.PackageName, metadata.MetaFileName, manifestPath)
	}
}

func checkArchiveHash(in Input, report *Report) {
	actual, err := fsutil.SHA256File(in.ArchivePath)
	if err != nil {
		logger.Debugf("%s: could not hash %s: %v", in.PackageName, in.ArchivePath, err)
	}
	if !strings.EqualFold(in.Record.ArchiveSHA256, actual) || actual == "" {
		report.appendf("%s: %s/%s:ArchiveSHA256 is not the SHA256 of %s, FAILED!",
			in.PackageName, in.PackageName, metadata.MetaFileName, in.ArchivePath)
	}
}

func checkSnapshot(in Input, report *Report) {
	if !fsutil.FileExists(in.SnapshotPath) {
		report.appendf("%s: the file %s/%s is missing, FAILED!",
			in.PackageName, in.PackageName, metadata.SnapshotFileName)
		return
	}

	// The snapshot records the last validated release; a re-released or
	// rolled-back version must not pass silently.
	if in.Snapshot == nil {
		return
	}
	current := in.Record.GetVersion()
	previous := in.Snapshot.GetVersion()
	if current == nil || previous == nil {
		return
	}
	if current.LessThanOrEqual(previous) {
		report.appendf("%s: current release version is %s, but previous release version was %s, FAILED!",
			in.PackageName, in.Record.Version, in.Snapshot.Version)
	}
}
