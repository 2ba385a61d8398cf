/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/krepis/pkg/loader/result"
)

func TestLoadCmd(t *testing.T) {
	src := writeModuleSource(t, "mod-a")
	cfgPath := writeConfigFile(t, fmt.Sprintf(
		`{"platforms": {"alpha": {"module": "mod-a", "source": %q}, "beta": {"module": "mod-a", "source": %q}}}`,
		src, src))

	outPath := filepath.Join(t.TempDir(), "out.json")
	args := []string{"load",
		"--config", cfgPath,
		"--modules-dir", t.TempDir(),
		"--output", outPath,
		"--format", "json",
		"alpha", "beta",
	}

	if err := loadCmd().Run(context.Background(), args); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	var out result.Output
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(out.Requested) != 2 {
		t.Errorf("requested = %v, want 2 ids", out.Requested)
	}
	// Both ids share one module, so the batch settles as a single task.
	if len(out.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(out.Results))
	}
	if out.SuccessCount() != 1 {
		t.Errorf("SuccessCount() = %d, want 1", out.SuccessCount())
	}
	if out.Results[0].Module != "mod-a" {
		t.Errorf("module = %q, want %q", out.Results[0].Module, "mod-a")
	}
	if len(out.Results[0].Platforms) != 2 {
		t.Errorf("platforms = %v, want both ids", out.Results[0].Platforms)
	}
}

func TestLoadCmdPartialFailure(t *testing.T) {
	src := writeModuleSource(t, "mod-a")
	cfgPath := writeConfigFile(t, fmt.Sprintf(
		`{"platforms": {"alpha": {"module": "mod-a", "source": %q}}}`, src))

	outPath := filepath.Join(t.TempDir(), "out.json")
	args := []string{"load",
		"--config", cfgPath,
		"--modules-dir", t.TempDir(),
		"--output", outPath,
		"--format", "json",
		"alpha", "ghost",
	}

	err := loadCmd().Run(context.Background(), args)
	if err == nil {
		t.Fatal("expected error for unregistered platform")
	}
	if !strings.Contains(err.Error(), "failed") {
		t.Errorf("error = %v, want load failure", err)
	}

	// The settled report is still written before the command fails.
	data, readErr := os.ReadFile(outPath)
	if readErr != nil {
		t.Fatalf("failed to read output: %v", readErr)
	}

	var out result.Output
	if jsonErr := json.Unmarshal(data, &out); jsonErr != nil {
		t.Fatalf("failed to parse output: %v", jsonErr)
	}

	if out.SuccessCount() != 1 {
		t.Errorf("SuccessCount() = %d, want 1", out.SuccessCount())
	}
	if out.FailureCount() != 1 {
		t.Errorf("FailureCount() = %d, want 1", out.FailureCount())
	}
	if len(out.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(out.Errors))
	}
	if out.Errors[0].Platforms[0] != "ghost" {
		t.Errorf("failed platform = %v, want ghost", out.Errors[0].Platforms)
	}
}

func TestLoadCmdValidation(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "no platform ids",
			args:   []string{"load"},
			errMsg: "at least one platform id",
		},
		{
			name:   "unknown format",
			args:   []string{"load", "--format", "xml", "alpha"},
			errMsg: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loadCmd().Run(context.Background(), tt.args)
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}
