package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/header"
)

// FileName is the default platform configuration file name.
const FileName = "platforms.json"

// Store reads and writes the platform configuration document on disk.
type Store struct {
	path string
}

// DefaultPath returns the default configuration location
// (~/.krepis/platforms.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".krepis", FileName), nil
}

// NewStore creates a store over the given configuration file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the configuration file. A missing or unreadable
// file is a ErrCodeConfigMissing failure.
func (s *Store) Load() (*Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfigMissing,
			fmt.Sprintf("platform configuration %s cannot be read", s.path), err,
			map[string]any{"path": s.path})
	}
	defer func() { _ = f.Close() }()

	doc, err := ParseDocument(f)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfigMissing,
			fmt.Sprintf("platform configuration %s cannot be parsed", s.path), err,
			map[string]any{"path": s.path})
	}

	return doc, nil
}

// LoadOrInit loads the configuration file, returning an empty document
// when the file does not exist yet. Parse failures still surface.
func (s *Store) LoadOrInit() (*Document, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return NewDocument(), nil
	}
	return s.Load()
}

// LoadOrDefault loads the configuration file, falling back to the built-in
// default document when the file does not exist yet.
func (s *Store) LoadOrDefault() (*Document, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return DefaultDocument()
	}
	return s.Load()
}

// Save writes the document in its canonical JSON form. The write is
// staged to a temp file and renamed so readers never observe a partial
// document.
func (s *Store) Save(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	doc.Init(header.KindPlatformConfig, header.APIVersion, "")

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".platforms-*.json")
	if err != nil {
		return fmt.Errorf("failed to stage configuration write: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace configuration: %w", err)
	}

	return nil
}

// Add upserts one platform entry and saves the document. Adding an id
// that already exists replaces its mapping.
func (s *Store) Add(id, module, source string) error {
	doc, err := s.LoadOrInit()
	if err != nil {
		return err
	}

	if prev, ok := doc.Platforms[id]; ok {
		slog.Debug("replacing platform entry",
			"platform", id,
			"old_module", prev.Module,
			"new_module", module,
		)
	}

	doc.Platforms[id] = Platform{Module: module, Source: source}
	return s.Save(doc)
}

// Remove deletes one platform entry and saves the document. Removing an
// unknown id fails with ErrCodeNotRegistered.
func (s *Store) Remove(id string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}

	if _, ok := doc.Platforms[id]; !ok {
		return errors.NewWithContext(errors.ErrCodeNotRegistered,
			fmt.Sprintf("platform %s is not configured", id),
			map[string]any{"platform": id, "path": s.path})
	}

	delete(doc.Platforms, id)
	return s.Save(doc)
}
