package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// stagePrefix names in-progress install directories under the store root.
// Staged directories are skipped by List and Has until committed.
const stagePrefix = ".stage-"

// Store is the on-disk collection of installed modules. Each module lives
// in its own subdirectory of the root, named after the module, with a
// module.yaml manifest at the top.
type Store struct {
	root string
}

// DefaultRoot returns the standard per-user module store location.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".krepis", "modules"), nil
}

// NewStore opens (creating if necessary) a module store rooted at root.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory a module occupies (or would occupy) in the store.
func (s *Store) Dir(module string) string {
	return filepath.Join(s.root, module)
}

// Has reports whether a module directory exists in the store.
func (s *Store) Has(module string) bool {
	info, err := os.Stat(s.Dir(module))
	return err == nil && info.IsDir()
}

// Manifest reads and validates the manifest of an installed module.
func (s *Store) Manifest(module string) (*Manifest, error) {
	f, err := os.Open(filepath.Join(s.Dir(module), ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest for module %s: %w", module, err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", module, err)
	}
	return m, nil
}

// List returns the manifests of all installed modules, sorted by name.
// Directories without a readable manifest are skipped.
func (s *Store) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read store root: %w", err)
	}

	manifests := make([]*Manifest, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !IsValidName(e.Name()) {
			continue
		}
		m, err := s.Manifest(e.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Name < manifests[j].Name
	})
	return manifests, nil
}

// Remove deletes an installed module from the store.
func (s *Store) Remove(module string) error {
	if !IsValidName(module) {
		return fmt.Errorf("invalid module name: %q", module)
	}
	if !s.Has(module) {
		return fmt.Errorf("module %s is not installed", module)
	}
	return os.RemoveAll(s.Dir(module))
}

// Stage creates a fresh staging directory under the store root. Installers
// materialize module content there and Commit it, so a half-finished
// install never appears as an installed module.
func (s *Store) Stage() (string, error) {
	dir, err := os.MkdirTemp(s.root, stagePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// Commit moves a staged directory into place as the named module,
// replacing any prior install. Staging under the store root keeps the
// rename on one filesystem.
func (s *Store) Commit(stage, module string) error {
	if !IsValidName(module) {
		return fmt.Errorf("invalid module name: %q", module)
	}

	dst := s.Dir(module)
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to clear module directory %s: %w", dst, err)
	}
	if err := os.Rename(stage, dst); err != nil {
		return fmt.Errorf("failed to commit module %s: %w", module, err)
	}
	return nil
}

// Discard removes a staging directory without committing it.
func (s *Store) Discard(stage string) {
	_ = os.RemoveAll(stage)
}
