package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/header"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), FileName))
}

func TestStoreLoadMissing(t *testing.T) {
	s := tempStore(t)

	if _, err := s.Load(); !errors.HasCode(err, errors.ErrCodeConfigMissing) {
		t.Errorf("Load on missing file: expected CONFIG_MISSING, got %v", err)
	}

	doc, err := s.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit on missing file failed: %v", err)
	}
	if len(doc.Platforms) != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	s := tempStore(t)
	if err := os.WriteFile(s.Path(), []byte("[1,2,3"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := s.Load(); !errors.HasCode(err, errors.ErrCodeConfigMissing) {
		t.Errorf("expected CONFIG_MISSING for corrupt file, got %v", err)
	}
	// A corrupt file must not be silently replaced.
	if _, err := s.LoadOrInit(); !errors.HasCode(err, errors.ErrCodeConfigMissing) {
		t.Errorf("LoadOrInit must surface parse failures, got %v", err)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)

	doc := &Document{Platforms: map[string]Platform{
		"web":     {Module: "mod-web", Source: "./modules/web"},
		"android": {Module: "mod-cordova", Source: "oci://ghcr.io/nvidia/mod-cordova:1.0.0"},
	}}

	if err := s.Save(doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Platforms) != 2 {
		t.Fatalf("expected 2 platforms, got %d", len(loaded.Platforms))
	}
	if loaded.Platforms["web"] != doc.Platforms["web"] {
		t.Errorf("web entry did not round-trip: %+v", loaded.Platforms["web"])
	}

	// Save stamps the document so the file self-describes.
	if loaded.Kind != header.KindPlatformConfig {
		t.Errorf("saved kind = %q, want %q", loaded.Kind, header.KindPlatformConfig)
	}
	if loaded.APIVersion != header.APIVersion {
		t.Errorf("saved apiVersion = %q, want %q", loaded.APIVersion, header.APIVersion)
	}
	if loaded.Metadata["timestamp"] == "" {
		t.Error("saved document missing metadata timestamp")
	}

	// Canonical form is JSON, newline-terminated, with no staging litter.
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if !json.Valid(raw) {
		t.Error("saved configuration must be valid JSON")
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Error("saved configuration must end with a newline")
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("failed to read directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only %s in the directory, got %d entries", FileName, len(entries))
	}
}

func TestStoreSaveValidates(t *testing.T) {
	s := tempStore(t)

	bad := &Document{Platforms: map[string]Platform{
		"web": {Module: "", Source: "./modules/web"},
	}}
	if err := s.Save(bad); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("invalid document must not be written")
	}
}

func TestStoreAddRemove(t *testing.T) {
	s := tempStore(t)

	// Add creates the file on first use.
	if err := s.Add("web", "mod-web", "./modules/web"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := s.Add("ios", "mod-cordova", "./modules/cordova"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(doc.Platforms) != 2 {
		t.Fatalf("expected 2 platforms, got %d", len(doc.Platforms))
	}

	// Re-adding an id replaces its mapping.
	if err := s.Add("web", "mod-web-v2", "oci://ghcr.io/nvidia/mod-web:2.0.0"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	doc, err = s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Platforms["web"].Module != "mod-web-v2" {
		t.Errorf("expected replaced mapping, got %+v", doc.Platforms["web"])
	}

	// Invalid entries are rejected at save time.
	if err := s.Add("bad id", "mod-x", "./modules/x"); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}

	if err := s.Remove("ios"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := s.Remove("ios"); !errors.HasCode(err, errors.ErrCodeNotRegistered) {
		t.Errorf("expected NOT_REGISTERED for repeated remove, got %v", err)
	}

	doc, err = s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := doc.Platforms["ios"]; ok {
		t.Error("removed platform still present")
	}
	if _, ok := doc.Platforms["web"]; !ok {
		t.Error("unrelated platform lost on remove")
	}
}
