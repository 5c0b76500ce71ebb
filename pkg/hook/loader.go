package hook

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/pkgvet/pkg/errors"
)

// HookFileExtension is the recognized hook script extension.
const HookFileExtension = ".tengo"

// LoadHooksFromPackageDir loads validation hooks from a package's metadata
// directory. Hook files live at <packageDir>/hooks/<hook-type>.tengo; a
// missing hooks directory is not an error.
func LoadHooksFromPackageDir(manager HookManager, packageDir string) error {
	hooksDir := filepath.Join(packageDir, "hooks")
	if _, err := os.Stat(hooksDir); err != nil {
		return nil
	}

	entries, err := os.ReadDir(hooksDir)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "failed to read hooks directory %s: %v", hooksDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		switch hookType {
		case PreValidate, PostValidate:
		default:
			continue // Skip unknown hook types
		}

		content, err := os.ReadFile(filepath.Join(hooksDir, entry.Name()))
		if err != nil {
			return errors.Wrapf(errors.ErrHookLoad, "error reading hook file %s: %v", entry.Name(), err)
		}

		if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
			return errors.Wrapf(err, "error adding hook %s", hookType)
		}
	}

	return nil
}
