package acquirer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/modules"
)

// copyLocal copies a local module directory into the stage directory.
func copyLocal(src, stage string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}

	info, err := os.Stat(absSrc)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", absSrc)
	}

	if err := os.CopyFS(stage, os.DirFS(absSrc)); err != nil {
		return fmt.Errorf("failed to copy module directory: %w", err)
	}

	return nil
}

// verifyStagedModule checks that a staged install actually contains the
// requested module before it is committed to the store.
func verifyStagedModule(stage, module string) error {
	f, err := os.Open(filepath.Join(stage, modules.ManifestFileName))
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("installed artifact for module %s has no manifest", module), err,
			map[string]any{"module": module})
	}
	defer func() { _ = f.Close() }()

	m, err := modules.ParseManifest(f)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("installed artifact for module %s has an invalid manifest", module), err,
			map[string]any{"module": module})
	}

	if m.Name != module {
		return errors.NewWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("installed artifact names itself %s, expected %s", m.Name, module),
			map[string]any{"module": module, "manifest": m.Name})
	}

	return nil
}
