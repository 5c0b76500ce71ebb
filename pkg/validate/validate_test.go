package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/pkgvet/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	unpackedDir  string
	archivePath  string
	snapshotPath string
	record       *metadata.Record
	snapshot     *metadata.Record
}

// setupFixture builds an unpacked tree, an archive file and a snapshot whose
// recorded hashes all match, so individual tests can break one thing at a time.
func setupFixture(t *testing.T) *fixture {
	t.Helper()
	tempDir := t.TempDir()

	unpackedDir := filepath.Join(tempDir, "Digraphs-1.5.0")
	require.NoError(t, os.MkdirAll(unpackedDir, 0o755))

	manifest := []byte("SetPackageInfo( rec() );")
	require.NoError(t, os.WriteFile(filepath.Join(unpackedDir, ManifestFileName), manifest, 0o644))

	archivePath := filepath.Join(tempDir, "digraphs-1.5.0.tar.gz")
	archiveContent := []byte("pretend archive bytes")
	require.NoError(t, os.WriteFile(archivePath, archiveContent, 0o644))

	snapshotPath := filepath.Join(tempDir, "meta.json.old")
	require.NoError(t, os.WriteFile(snapshotPath, []byte("{}"), 0o644))

	manifestSum := sha256.Sum256(manifest)
	archiveSum := sha256.Sum256(archiveContent)

	return &fixture{
		unpackedDir:  unpackedDir,
		archivePath:  archivePath,
		snapshotPath: snapshotPath,
		record: &metadata.Record{
			Name:              "digraphs",
			Version:           "1.5.0",
			PackageInfoSHA256: hex.EncodeToString(manifestSum[:]),
			ArchiveSHA256:     hex.EncodeToString(archiveSum[:]),
		},
		snapshot: &metadata.Record{Version: "1.4.0"},
	}
}

func (f *fixture) input() Input {
	return Input{
		PackageName:  "digraphs",
		UnpackedDir:  f.unpackedDir,
		ArchivePath:  f.archivePath,
		Record:       f.record,
		Snapshot:     f.snapshot,
		SnapshotPath: f.snapshotPath,
	}
}

func TestCheck_AllPass(t *testing.T) {
	f := setupFixture(t)
	report := Check(f.input())
	assert.True(t, report.OK(), "expected pass, got problems: %v", report.Problems)
}

func TestCheck_WrongManifestHash(t *testing.T) {
	f := setupFixture(t)
	f.record.PackageInfoSHA256 = "0000"

	report := Check(f.input())
	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "PackageInfoSHA256")
	assert.Contains(t, report.Problems[0], "FAILED!")
}

func TestCheck_WrongArchiveHash(t *testing.T) {
	f := setupFixture(t)
	f.record.ArchiveSHA256 = "0000"

	report := Check(f.input())
	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "ArchiveSHA256")
}

func TestCheck_MissingSnapshot(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, os.Remove(f.snapshotPath))
	in := f.input()
	in.Snapshot = nil

	report := Check(in)
	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "digraphs/meta.json.old is missing")
}

func TestCheck_AllThreeFailuresCoOccur(t *testing.T) {
	f := setupFixture(t)
	f.record.PackageInfoSHA256 = "0000"
	f.record.ArchiveSHA256 = "1111"
	require.NoError(t, os.Remove(f.snapshotPath))
	in := f.input()
	in.Snapshot = nil

	report := Check(in)
	assert.Len(t, report.Problems, 3, "independent checks must all report")
}

func TestCheck_VersionRegression(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		previous    string
		wantProblem bool
	}{
		{name: "newer version passes", current: "1.5.0", previous: "1.4.0"},
		{name: "same version fails", current: "1.3.2", previous: "1.3.2", wantProblem: true},
		{name: "older version fails", current: "1.4.0", previous: "1.5.0", wantProblem: true},
		{name: "unparseable previous is skipped", current: "1.5.0", previous: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			f.record.Version = tt.current
			f.snapshot.Version = tt.previous

			report := Check(f.input())
			if tt.wantProblem {
				require.Len(t, report.Problems, 1)
				assert.Contains(t, report.Problems[0], "previous release version")
			} else {
				assert.True(t, report.OK(), "unexpected problems: %v", report.Problems)
			}
		})
	}
}

func TestCheck_EmptyUnpackedDirFailsManifestCheck(t *testing.T) {
	f := setupFixture(t)
	in := f.input()
	in.UnpackedDir = ""

	report := Check(in)
	assert.False(t, report.OK())
	assert.Contains(t, report.Problems[0], "PackageInfoSHA256")
}
