package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// installModule writes a module directory directly into the store root,
// bypassing the stage/commit path.
func installModule(t *testing.T, s *Store, name, version string) {
	t.Helper()

	dir := s.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create module dir: %v", err)
	}
	manifest := fmt.Sprintf("name: %s\nversion: %s\nkind: generic\n", name, version)
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestNewStore(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Error("expected error for empty root")
	}

	root := filepath.Join(t.TempDir(), "nested", "modules")
	s, err := NewStore(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Root() != root {
		t.Errorf("Root() = %s, want %s", s.Root(), root)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("store root not created: %v", err)
	}
}

func TestStoreHasAndManifest(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if s.Has("mod-a") {
		t.Error("empty store must not report modules")
	}
	if _, err := s.Manifest("mod-a"); err == nil {
		t.Error("expected error for missing module")
	}

	installModule(t, s, "mod-a", "1.0.0")

	if !s.Has("mod-a") {
		t.Error("expected mod-a present")
	}
	m, err := s.Manifest("mod-a")
	if err != nil {
		t.Fatalf("manifest read failed: %v", err)
	}
	if m.Name != "mod-a" || m.Version != "1.0.0" {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestStoreList(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	installModule(t, s, "mod-b", "1.0.0")
	installModule(t, s, "mod-a", "2.0.0")

	// Directories that are not modules are skipped: bad names, missing
	// manifests, stray files.
	if err := os.MkdirAll(filepath.Join(s.Root(), ".hidden"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(s.Root(), "no-manifest"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	manifests, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(manifests) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(manifests))
	}
	if manifests[0].Name != "mod-a" || manifests[1].Name != "mod-b" {
		t.Errorf("expected sorted listing, got %v, %v", manifests[0].Name, manifests[1].Name)
	}
}

func TestStoreStageCommit(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	stage, err := s.Stage()
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	if filepath.Dir(stage) != s.Root() {
		t.Errorf("stage must live under the store root, got %s", stage)
	}
	if !strings.HasPrefix(filepath.Base(stage), ".stage-") {
		t.Errorf("unexpected stage name %s", filepath.Base(stage))
	}

	if err := os.WriteFile(filepath.Join(stage, ManifestFileName),
		[]byte("name: mod-a\nversion: 1.0.0\nkind: generic\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Staged content is invisible until committed.
	if s.Has("mod-a") {
		t.Error("staged module must not be visible")
	}
	manifests, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(manifests) != 0 {
		t.Errorf("staged directories must not be listed, got %d", len(manifests))
	}

	if err := s.Commit(stage, "mod-a"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if !s.Has("mod-a") {
		t.Error("committed module missing")
	}
	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Error("stage directory must be gone after commit")
	}

	// Commit replaces a prior install wholesale.
	stage2, err := s.Stage()
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stage2, ManifestFileName),
		[]byte("name: mod-a\nversion: 2.0.0\nkind: generic\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := s.Commit(stage2, "mod-a"); err != nil {
		t.Fatalf("recommit failed: %v", err)
	}
	m, err := s.Manifest("mod-a")
	if err != nil {
		t.Fatalf("manifest read failed: %v", err)
	}
	if m.Version != "2.0.0" {
		t.Errorf("expected replaced install, got version %s", m.Version)
	}

	if err := s.Commit(t.TempDir(), "Bad Name"); err == nil {
		t.Error("expected error for invalid module name")
	}
}

func TestStoreDiscard(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	stage, err := s.Stage()
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	s.Discard(stage)
	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Error("discarded stage must be removed")
	}

	// Discarding twice is harmless.
	s.Discard(stage)
}

func TestStoreRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	installModule(t, s, "mod-a", "1.0.0")

	if err := s.Remove("Bad Name"); err == nil {
		t.Error("expected error for invalid name")
	}
	if err := s.Remove("mod-b"); err == nil {
		t.Error("expected error for missing module")
	}
	if err := s.Remove("mod-a"); err != nil {
		t.Errorf("remove failed: %v", err)
	}
	if s.Has("mod-a") {
		t.Error("removed module still present")
	}
}
