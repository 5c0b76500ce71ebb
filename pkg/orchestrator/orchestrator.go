package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/glorpus-work/pkgvet/pkg/archive"
	"github.com/glorpus-work/pkgvet/pkg/download"
	"github.com/glorpus-work/pkgvet/pkg/fsutil"
	"github.com/glorpus-work/pkgvet/pkg/hook"
	"github.com/glorpus-work/pkgvet/pkg/metadata"
	"github.com/glorpus-work/pkgvet/pkg/validate"
)

// New creates an orchestrator with the given collaborators and event hooks.
func New(meta MetadataProvider, dl Downloader, unpacker Unpacker, validator Validator, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		Metadata:  meta,
		DL:        dl,
		Archive:   unpacker,
		Validator: validator,
		Hooks:     hooks,
	}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// ValidateAll runs the full validation pipeline for each named package in
// order. Packages are independent: one package's failure never aborts the
// rest of the batch. The returned results are in input order.
func (o *Orchestrator) ValidateAll(ctx context.Context, names []string, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		passed := o.validateOne(ctx, name, opts)
		if passed {
			emit(o.Hooks, Event{Phase: "done", Package: name, Msg: fmt.Sprintf("%s: validated ok!", name)})
		} else {
			emit(o.Hooks, Event{Phase: "done", Package: name, Msg: fmt.Sprintf("%s: validation FAILED!", name)})
		}
		results = append(results, Result{Package: name, Passed: passed})
	}
	return results, nil
}

// validateOne performs the acquire → unpack → resolve → check → external
// validation pipeline for a single package.
func (o *Orchestrator) validateOne(ctx context.Context, name string, opts Options) bool {
	rec, err := o.Metadata.Load(name)
	if err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return false
	}

	archivePath, ok := o.acquireArchive(ctx, name, rec, opts)
	if !ok {
		return false
	}

	if !o.unpackArchive(ctx, name, archivePath, opts.UnpackDir) {
		return false
	}

	unpackedDir := archive.ResolveUnpackedDir(opts.UnpackDir, name)
	if unpackedDir == "" {
		emit(o.Hooks, Event{Phase: "warning", Package: name,
			Msg: fmt.Sprintf("%s: couldn't determine the unpacked archive directory!", name)})
	}

	hookMgr := hook.NewHookManager()
	pkgDir := filepath.Dir(o.Metadata.SnapshotPath(name))
	if err := hook.LoadHooksFromPackageDir(hookMgr, pkgDir); err != nil {
		emit(o.Hooks, Event{Phase: "warning", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return false
	}
	hookCtx := hook.HookContext{
		PackageName:    name,
		PackageVersion: rec.Version,
		ArchivePath:    archivePath,
		UnpackedDir:    unpackedDir,
	}
	if err := hookMgr.Execute(hook.PreValidate, hookCtx); err != nil {
		emit(o.Hooks, Event{Phase: "warning", Package: name, Msg: fmt.Sprintf("%s: pre-validate hook: %v", name, err)})
		return false
	}

	snapshot, err := o.Metadata.LoadSnapshot(name)
	if err != nil {
		snapshot = nil // absence is handled by the snapshot existence check
	}

	report := validate.Check(validate.Input{
		PackageName:  name,
		UnpackedDir:  unpackedDir,
		ArchivePath:  archivePath,
		Record:       rec,
		Snapshot:     snapshot,
		SnapshotPath: o.Metadata.SnapshotPath(name),
	})
	for _, problem := range report.Problems {
		emit(o.Hooks, Event{Phase: "warning", Package: name, Msg: problem})
	}
	if !report.OK() {
		return false
	}

	// Only a package that passed every field check is handed to the
	// external validator.
	if err := o.Validator.Validate(ctx, unpackedDir, name); err != nil {
		emit(o.Hooks, Event{Phase: "warning", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return false
	}

	if err := hookMgr.Execute(hook.PostValidate, hookCtx); err != nil {
		emit(o.Hooks, Event{Phase: "warning", Package: name, Msg: fmt.Sprintf("%s: post-validate hook: %v", name, err)})
		return false
	}
	return true
}

// acquireArchive ensures the package archive is on disk, downloading it when
// absent. Returns the archive path and whether acquisition succeeded.
func (o *Orchestrator) acquireArchive(ctx context.Context, name string, rec *metadata.Record, opts Options) (string, bool) {
	filename, err := rec.ArchiveFilename()
	if err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return "", false
	}
	archivePath := filepath.Join(opts.ArchiveDir, filename)

	if fsutil.FileExists(archivePath) {
		emit(o.Hooks, Event{Phase: "downloading", Package: name,
			Msg: fmt.Sprintf("%s: %s already exists, not downloading again", name, archivePath)})
		return archivePath, true
	}

	rawURL, err := rec.DownloadURL()
	if err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return "", false
	}
	srcURL, err := url.Parse(rawURL)
	if err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: invalid archive URL %s: %v", name, rawURL, err)})
		return "", false
	}

	absDir, err := filepath.Abs(opts.ArchiveDir)
	if err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return "", false
	}

	emit(o.Hooks, Event{Phase: "downloading", Package: name,
		Msg: fmt.Sprintf("%s: downloading %s to %s ...", name, rawURL, archivePath)})
	if _, err := o.DL.Fetch(ctx, download.Item{URL: srcURL, Filename: filename},
		download.Options{Dir: absDir, Tries: opts.Tries}); err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return "", false
	}
	return archivePath, true
}

// unpackArchive extracts the archive into the staging directory. Unrecognized
// archive extensions are skipped, not failed: downstream checks then fail on
// the missing files, which keeps the skip diagnosable without special-casing.
func (o *Orchestrator) unpackArchive(ctx context.Context, name, archivePath, unpackDir string) bool {
	if !archive.IsSupported(archivePath) {
		emit(o.Hooks, Event{Phase: "unpacking", Package: name,
			Msg: fmt.Sprintf("%s: bad archive extension %s, skipping %s", name, archive.Extension(archivePath), archivePath)})
		return true
	}

	emit(o.Hooks, Event{Phase: "unpacking", Package: name,
		Msg: fmt.Sprintf("%s: unpacking %s into %s ...", name, archivePath, unpackDir)})
	if err := o.Archive.ExtractAll(ctx, archivePath, unpackDir); err != nil {
		emit(o.Hooks, Event{Phase: "error", Package: name, Msg: fmt.Sprintf("%s: %v", name, err)})
		return false
	}
	return true
}
