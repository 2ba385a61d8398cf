/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/krepis/pkg/config"
	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/registry"
)

func TestPlatformsAddRemoveCmd(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.FileName)

	addArgs := []string{"add",
		"--config", cfgPath,
		"--module", "mod-a",
		"--source", "./modules/a",
		"alpha",
	}
	if err := platformsAddCmd().Run(context.Background(), addArgs); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	store := config.NewStore(cfgPath)
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	entry, ok := doc.Platforms["alpha"]
	if !ok {
		t.Fatal("alpha not saved")
	}
	if entry.Module != "mod-a" || entry.Source != "./modules/a" {
		t.Errorf("entry = %+v, want mod-a ./modules/a", entry)
	}

	// Re-adding replaces the mapping.
	updateArgs := []string{"add",
		"--config", cfgPath,
		"--module", "mod-b",
		"--source", "./modules/b",
		"alpha",
	}
	if err := platformsAddCmd().Run(context.Background(), updateArgs); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	doc, err = store.Load()
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if doc.Platforms["alpha"].Module != "mod-b" {
		t.Errorf("module after update = %q, want mod-b", doc.Platforms["alpha"].Module)
	}

	removeArgs := []string{"remove", "--config", cfgPath, "alpha"}
	if err := platformsRemoveCmd().Run(context.Background(), removeArgs); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	doc, err = store.Load()
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if _, ok := doc.Platforms["alpha"]; ok {
		t.Error("alpha still present after remove")
	}

	// Removing an unknown id fails.
	if err := platformsRemoveCmd().Run(context.Background(), removeArgs); err == nil {
		t.Error("expected error removing unknown platform")
	}
}

func TestPlatformsAddCmdValidation(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.FileName)

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "missing id argument",
			args:   []string{"add", "--config", cfgPath, "--module", "mod-a", "--source", "./a"},
			errMsg: "platform id argument is required",
		},
		{
			name: "remote config rejected",
			args: []string{"add",
				"--config", "https://example.com/platforms.json",
				"--module", "mod-a",
				"--source", "./a",
				"alpha",
			},
			errMsg: "cannot modify remote configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := platformsAddCmd().Run(context.Background(), tt.args)
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestPlatformsListCmd(t *testing.T) {
	src := writeModuleSource(t, "mod-a")
	cfgPath := writeConfigFile(t, fmt.Sprintf(
		`{"platforms": {"beta": {"module": "mod-a", "source": %q}, "alpha": {"module": "mod-a", "source": %q}}}`,
		src, src))

	outPath := filepath.Join(t.TempDir(), "out.json")
	args := []string{"list",
		"--config", cfgPath,
		"--modules-dir", t.TempDir(),
		"--output", outPath,
		"--format", "json",
	}
	if err := platformsListCmd().Run(context.Background(), args); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	var entries []registry.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Sorted by id.
	if entries[0].ID != "alpha" || entries[1].ID != "beta" {
		t.Errorf("entries = %v, want alpha then beta", entries)
	}
	if entries[0].Loaded() {
		t.Error("alpha should not be loaded yet")
	}
}

func TestPlatformsEnableCmd(t *testing.T) {
	src := writeModuleSource(t, "mod-a")
	doc := fmt.Sprintf(`{"platforms": {"web": {"module": "mod-a", "source": %q}}}`, src)

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer svr.Close()

	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	args := []string{"enable",
		"--from", svr.URL + "/platforms.json",
		"--config", cfgPath,
		"--set", "web.module=mod-web",
	}
	if err := platformsEnableCmd().Run(context.Background(), args); err != nil {
		t.Fatalf("enable failed: %v", err)
	}

	saved, err := config.NewStore(cfgPath).Load()
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	entry, ok := saved.Platforms["web"]
	if !ok {
		t.Fatal("web not saved")
	}
	if entry.Module != "mod-web" {
		t.Errorf("module = %q, want override mod-web", entry.Module)
	}
	if entry.Source != src {
		t.Errorf("source = %q, want %q", entry.Source, src)
	}
}

func TestPlatformsExportCmd(t *testing.T) {
	t.Run("local document", func(t *testing.T) {
		cfgPath := writeConfigFile(t,
			`{"platforms": {"web": {"module": "mod-web", "source": "./modules/web"}}}`)

		outPath := filepath.Join(t.TempDir(), "out.json")
		args := []string{"export",
			"--config", cfgPath,
			"--output", outPath,
			"--format", "json",
		}
		if err := platformsExportCmd().Run(context.Background(), args); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		var doc config.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if doc.Kind != header.KindPlatformConfig {
			t.Errorf("kind = %q, want %q", doc.Kind, header.KindPlatformConfig)
		}
		if doc.Metadata["version"] == "" {
			t.Error("exported document missing metadata version")
		}
		if doc.Platforms["web"].Module != "mod-web" {
			t.Errorf("web entry = %+v, want mod-web", doc.Platforms["web"])
		}
	})

	t.Run("built-in default when no document exists", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "out.json")
		args := []string{"export",
			"--config", filepath.Join(t.TempDir(), config.FileName),
			"--output", outPath,
			"--format", "json",
		}
		if err := platformsExportCmd().Run(context.Background(), args); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		var doc config.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(doc.Platforms) == 0 {
			t.Error("expected the built-in default document")
		}
	})
}

func TestPlatformsEnableCmdMissingSource(t *testing.T) {
	svr := httptest.NewServer(http.NotFoundHandler())
	defer svr.Close()

	args := []string{"enable",
		"--from", svr.URL + "/platforms.json",
		"--config", filepath.Join(t.TempDir(), config.FileName),
	}
	if err := platformsEnableCmd().Run(context.Background(), args); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestConfigStoreFromCmd(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		wantErr  bool
		wantPath func(t *testing.T, path string)
	}{
		{
			name:   "explicit local path",
			config: "/tmp/krepis-test/platforms.json",
			wantPath: func(t *testing.T, path string) {
				if path != "/tmp/krepis-test/platforms.json" {
					t.Errorf("path = %q, want explicit path", path)
				}
			},
		},
		{
			name:   "default path under home",
			config: "",
			wantPath: func(t *testing.T, path string) {
				if !strings.HasSuffix(path, filepath.Join(".krepis", config.FileName)) {
					t.Errorf("path = %q, want default under ~/.krepis", path)
				}
			},
		},
		{
			name:    "remote http source",
			config:  "https://example.com/platforms.json",
			wantErr: true,
		},
		{
			name:    "remote configmap source",
			config:  "cm://krepis/platforms",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var store *config.Store
			var storeErr error

			testCmd := &cli.Command{
				Name: "test",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: tt.config},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					store, storeErr = configStoreFromCmd(cmd)
					return nil
				},
			}
			if err := testCmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}

			if tt.wantErr {
				if storeErr == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if storeErr != nil {
				t.Fatalf("unexpected error: %v", storeErr)
			}
			tt.wantPath(t, store.Path())
		})
	}
}
