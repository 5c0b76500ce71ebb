package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mholt/archives"
)

// buildArchive packs sourceDir's contents into archivePath, choosing the
// format from the filename extension.
func buildArchive(t *testing.T, sourceDir, archivePath string) {
	t.Helper()
	ctx := context.Background()

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		sourceDir + string(os.PathSeparator): "",
	})
	if err != nil {
		t.Fatalf("Failed to read files from disk: %v", err)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("Failed to create archive file: %v", err)
	}
	defer func() { _ = out.Close() }()

	var format archives.Archiver
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"):
		format = archives.CompressedArchive{Compression: archives.Gz{}, Archival: archives.Tar{}}
	case strings.HasSuffix(archivePath, ".tar.bz2"):
		format = archives.CompressedArchive{Compression: archives.Bz2{}, Archival: archives.Tar{}}
	case strings.HasSuffix(archivePath, ".zip"):
		format = archives.Zip{}
	default:
		t.Fatalf("No archiver for %s", archivePath)
	}

	if err := format.Archive(ctx, out, files); err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
}

// makePackageTree creates a source tree with a single top-level directory
// holding a manifest, as package archives ship it.
func makePackageTree(t *testing.T, topDir string) string {
	t.Helper()
	sourceDir := filepath.Join(t.TempDir(), "source")
	pkgDir := filepath.Join(sourceDir, topDir)
	if err := os.MkdirAll(filepath.Join(pkgDir, "doc"), 0o755); err != nil {
		t.Fatalf("Failed to create package tree: %v", err)
	}
	files := map[string]string{
		"PackageInfo.g":  "SetPackageInfo( rec( PackageName := \"test\" ) );",
		"doc/manual.txt": "manual",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(pkgDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return sourceDir
}

func TestExtractAllAndResolve(t *testing.T) {
	for _, ext := range []string{".tar.gz", ".tar.bz2", ".zip"} {
		t.Run(ext, func(t *testing.T) {
			tempDir := t.TempDir()
			sourceDir := makePackageTree(t, "Digraphs-1.5.0")
			archivePath := filepath.Join(tempDir, "digraphs-1.5.0"+ext)
			buildArchive(t, sourceDir, archivePath)

			if !IsSupported(archivePath) {
				t.Fatalf("Expected %s to be a supported archive", archivePath)
			}

			unpackDir := filepath.Join(tempDir, "unpacked")
			am := NewManager()
			if err := am.ExtractAll(context.Background(), archivePath, unpackDir); err != nil {
				t.Fatalf("Failed to extract archive: %v", err)
			}

			resolved := ResolveUnpackedDir(unpackDir, "digraphs")
			if resolved == "" {
				t.Fatal("Expected to resolve the unpacked directory")
			}
			if filepath.Base(resolved) != "Digraphs-1.5.0" {
				t.Errorf("Resolved wrong directory: %s", resolved)
			}

			manifest := filepath.Join(resolved, "PackageInfo.g")
			if _, err := os.Stat(manifest); err != nil {
				t.Errorf("Manifest missing after extraction: %v", err)
			}
		})
	}
}

func TestUnsupportedExtensionIsNotExtracted(t *testing.T) {
	tempDir := t.TempDir()
	archivePath := filepath.Join(tempDir, "digraphs-1.5.0.rar")
	if err := os.WriteFile(archivePath, []byte("not really an archive"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if IsSupported(archivePath) {
		t.Error("Expected .rar to be unsupported")
	}

	// Extraction is skipped for unsupported archives, so resolution over the
	// untouched staging directory finds nothing.
	unpackDir := filepath.Join(tempDir, "unpacked")
	if err := os.MkdirAll(unpackDir, 0o755); err != nil {
		t.Fatalf("Failed to create unpack dir: %v", err)
	}
	if resolved := ResolveUnpackedDir(unpackDir, "digraphs"); resolved != "" {
		t.Errorf("Expected no match, got %s", resolved)
	}
}

func TestResolveUnpackedDir_FirstMatchWins(t *testing.T) {
	unpackDir := t.TempDir()
	for _, name := range []string{"aclib-1.3.2", "Digraphs-1.5.0", "digraphs-old"} {
		if err := os.MkdirAll(filepath.Join(unpackDir, name), 0o755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
	}

	resolved := ResolveUnpackedDir(unpackDir, "digraphs")
	if filepath.Base(resolved) != "Digraphs-1.5.0" {
		t.Errorf("Expected first case-insensitive prefix match, got %s", resolved)
	}
}

func TestResolveUnpackedDir_MissingDir(t *testing.T) {
	if got := ResolveUnpackedDir(filepath.Join(t.TempDir(), "absent"), "pkg"); got != "" {
		t.Errorf("Expected empty result for missing staging dir, got %s", got)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"pkg-1.0.tar.gz":  "gz",
		"pkg-1.0.tar.bz2": "bz2",
		"pkg-1.0.zip":     "zip",
		"pkg-1.0.rar":     "rar",
		"pkg-1.0.tgz":     "tgz",
	}
	for name, want := range tests {
		if got := Extension(name); got != want {
			t.Errorf("Extension(%s) = %s, want %s", name, got, want)
		}
	}

	if !IsSupported("pkg-1.0.tgz") {
		t.Error("Expected .tgz to be supported")
	}
}
