package cli

import (
	"fmt"

	"github.com/glorpus-work/pkgvet/pkg/archive"
	"github.com/glorpus-work/pkgvet/pkg/download"
	"github.com/glorpus-work/pkgvet/pkg/extval"
	"github.com/glorpus-work/pkgvet/pkg/metadata"
	"github.com/glorpus-work/pkgvet/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var (
		archiveDir string
		unpackDir  string
		tries      int
	)

	cmd := &cobra.Command{
		Use:   "validate PACKAGE [PACKAGE...]",
		Short: "Validate package archives against recorded metadata",
		Long: `Validate one or more package archives against their recorded metadata.
For each package the archive is downloaded (unless already present), unpacked,
its hashes are compared with the recorded values, the prior metadata snapshot
is checked, and the external validator is run on the unpacked tree.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, archiveDir, unpackDir, tries)
		},
	}

	cmd.Flags().StringVar(&archiveDir, "archive-dir", "", "Directory for downloaded archives (defaults to config)")
	cmd.Flags().StringVar(&unpackDir, "unpack-dir", "", "Staging directory for extraction (defaults to config)")
	cmd.Flags().IntVar(&tries, "tries", 0, "Download retry budget (0=config default)")

	return cmd
}

func runValidate(cmd *cobra.Command, packages []string, archiveDir, unpackDir string, tries int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if archiveDir == "" {
		archiveDir = cfg.Settings.ArchiveDir
	}
	if unpackDir == "" {
		unpackDir = cfg.Settings.UnpackDir
	}
	if tries <= 0 {
		tries = cfg.Settings.DownloadTries
	}

	// One console line per event, the primary reporting channel.
	hooks := orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		fmt.Println(e.Msg)
	}}

	orch := orchestrator.New(
		metadata.NewDirProvider(cfg.Settings.MetaDir),
		download.NewManager(cfg.Settings.HTTPTimeout, ""),
		archive.NewManager(),
		extval.NewExecValidator(cfg.Settings.Validator),
		hooks,
	)

	opts := orchestrator.Options{
		ArchiveDir: archiveDir,
		UnpackDir:  unpackDir,
		Tries:      tries,
	}

	// Per-package failures are reported on the console; they do not make
	// the process exit non-zero.
	_, err = orch.ValidateAll(cmd.Context(), packages, opts)
	return err
}
