//go:build integration

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mholt/archives"
	"github.com/stretchr/testify/require"
)

// fixtureEnv is one test workspace: a metadata tree, an archive directory and
// a staging directory, all under absolute temp paths.
type fixtureEnv struct {
	root       string
	metaDir    string
	archiveDir string
	unpackDir  string
	configPath string
}

func newFixtureEnv(t *testing.T) *fixtureEnv {
	t.Helper()
	root := t.TempDir()
	env := &fixtureEnv{
		root:       root,
		metaDir:    filepath.Join(root, "packages"),
		archiveDir: filepath.Join(root, "_archives"),
		unpackDir:  filepath.Join(root, "_unpacked_archives"),
		configPath: filepath.Join(root, "pkgvet.yaml"),
	}
	require.NoError(t, os.MkdirAll(env.metaDir, 0o755))
	require.NoError(t, os.MkdirAll(env.archiveDir, 0o755))

	cfg := fmt.Sprintf(`settings:
  meta_dir: %s
  archive_dir: %s
  unpack_dir: %s
  download_tries: 2
  validator: ["true"]
`, env.metaDir, env.archiveDir, env.unpackDir)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o644))
	return env
}

// addPackage creates a package: an unpackable tar.gz archive in archiveDir, a
// meta.json with matching hashes, and (optionally) a meta.json.old snapshot.
// archiveURL is recorded as-is; an empty value records an unused example URL.
func (env *fixtureEnv) addPackage(t *testing.T, name, version string, withSnapshot bool, archiveURL string) {
	t.Helper()

	// Source tree with a capitalized top-level directory, as releases ship it.
	topDir := fmt.Sprintf("%s-%s", name, version)
	srcRoot := filepath.Join(env.root, "src-"+name)
	pkgSrc := filepath.Join(srcRoot, topDir)
	require.NoError(t, os.MkdirAll(pkgSrc, 0o755))
	manifest := []byte(fmt.Sprintf("SetPackageInfo( rec( PackageName := %q ) );", name))
	require.NoError(t, os.WriteFile(filepath.Join(pkgSrc, "PackageInfo.g"), manifest, 0o644))

	archivePath := filepath.Join(env.archiveDir, topDir+".tar.gz")
	buildTarGz(t, srcRoot, archivePath)

	if archiveURL == "" {
		archiveURL = "https://example.org/dl/" + topDir
	}

	pkgDir := filepath.Join(env.metaDir, name)
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	record := map[string]string{
		"PackageName":       name,
		"Version":           version,
		"ArchiveURL":        archiveURL,
		"ArchiveFormats":    ".tar.gz .tar.bz2 .zip",
		"ArchiveSHA256":     fileDigest(t, archivePath),
		"PackageInfoSHA256": digest(manifest),
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "meta.json"), data, 0o644))

	if withSnapshot {
		snap := map[string]string{"Version": "0.0.1"}
		snapData, err := json.Marshal(snap)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "meta.json.old"), snapData, 0o644))
	}
}

func buildTarGz(t *testing.T, sourceDir, archivePath string) {
	t.Helper()
	ctx := context.Background()

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		sourceDir + string(os.PathSeparator): "",
	})
	require.NoError(t, err)

	out, err := os.Create(archivePath)
	require.NoError(t, err)
	defer func() { _ = out.Close() }()

	format := archives.CompressedArchive{Compression: archives.Gz{}, Archival: archives.Tar{}}
	require.NoError(t, format.Archive(ctx, out, files))
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileDigest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return digest(data)
}

// runCLI executes the root command with the given arguments and returns the
// captured stdout.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd := newRootCmd()
	cmd.SetArgs(args)
	execErr := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, execErr)

	return string(out)
}
