package acquirer

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/oci"

	"github.com/NVIDIA/krepis/pkg/errors"
)

func TestStripProtocol(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "https prefix",
			input:    "https://ghcr.io",
			expected: "ghcr.io",
		},
		{
			name:     "http prefix",
			input:    "http://localhost:5000",
			expected: "localhost:5000",
		},
		{
			name:     "no prefix",
			input:    "registry.example.com",
			expected: "registry.example.com",
		},
		{
			name:     "with port no prefix",
			input:    "localhost:5000",
			expected: "localhost:5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripProtocol(tt.input)
			if got != tt.expected {
				t.Errorf("stripProtocol(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPushValidation(t *testing.T) {
	ctx := context.Background()

	_, err := Push(ctx, PushOptions{
		ModuleDir:  t.TempDir(),
		Registry:   "localhost:5000",
		Repository: "krepis/mod-a",
	})
	if err == nil || !strings.Contains(err.Error(), "tag is required") {
		t.Errorf("expected tag error, got %v", err)
	}

	_, err = Push(ctx, PushOptions{
		ModuleDir:  t.TempDir(),
		Registry:   "invalid registry with spaces",
		Repository: "krepis/mod-a",
		Tag:        "1.0.0",
	})
	if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT for bad registry, got %v", err)
	}

	// Repository paths must be lowercase.
	_, err = Push(ctx, PushOptions{
		ModuleDir:  t.TempDir(),
		Registry:   "localhost:5000",
		Repository: "Krepis/Mod-A",
		Tag:        "1.0.0",
	})
	if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT for bad repository, got %v", err)
	}
}

// TestPackModuleArtifact packs a module directory the way Push does and
// copies it into a local OCI layout, then verifies the artifact structure
// matches what Installer.pull expects on the consuming side.
func TestPackModuleArtifact(t *testing.T) {
	ctx := context.Background()
	src := writeModuleSource(t, "mod-a", "1.2.0")

	fs, err := packModuleArtifact(ctx, src, "1.2.0")
	if err != nil {
		t.Fatalf("failed to pack module artifact: %v", err)
	}
	defer func() { _ = fs.Close() }()

	layoutDir := t.TempDir()
	layout, err := oci.New(layoutDir)
	if err != nil {
		t.Fatalf("failed to create OCI layout store: %v", err)
	}

	desc, err := oras.Copy(ctx, fs, "1.2.0", layout, "1.2.0", oras.DefaultCopyOptions)
	if err != nil {
		t.Fatalf("failed to copy artifact to layout: %v", err)
	}

	manifestData, err := os.ReadFile(blobPath(layoutDir, desc.Digest.String()))
	if err != nil {
		t.Fatalf("failed to read manifest blob: %v", err)
	}
	var manifest ociv1.Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		t.Fatalf("failed to unmarshal manifest: %v", err)
	}

	if manifest.ArtifactType != ArtifactType {
		t.Errorf("artifact type = %q, want %q", manifest.ArtifactType, ArtifactType)
	}
	if len(manifest.Layers) != 1 {
		t.Fatalf("manifest has %d layers, want 1", len(manifest.Layers))
	}
	if manifest.Layers[0].MediaType != ociv1.MediaTypeImageLayerGzip {
		t.Errorf("layer media type = %q, want %q",
			manifest.Layers[0].MediaType, ociv1.MediaTypeImageLayerGzip)
	}

	files := extractLayerFiles(t, blobPath(layoutDir, manifest.Layers[0].Digest.String()))
	for _, name := range []string{"module.yaml", "payload.txt"} {
		if _, ok := files[name]; !ok {
			t.Errorf("file %q missing from artifact layer, got %v", name, files)
		}
	}
}

func TestPackModuleArtifactReproducible(t *testing.T) {
	ctx := context.Background()
	src := writeModuleSource(t, "mod-a", "1.2.0")

	var layerDigests []string
	for i := 0; i < 2; i++ {
		fs, err := packModuleArtifact(ctx, src, "1.2.0")
		if err != nil {
			t.Fatalf("pack %d failed: %v", i, err)
		}

		layoutDir := t.TempDir()
		layout, err := oci.New(layoutDir)
		if err != nil {
			t.Fatalf("pack %d: failed to create layout store: %v", i, err)
		}

		desc, err := oras.Copy(ctx, fs, "1.2.0", layout, "1.2.0", oras.DefaultCopyOptions)
		_ = fs.Close()
		if err != nil {
			t.Fatalf("pack %d: failed to copy artifact: %v", i, err)
		}

		manifestData, err := os.ReadFile(blobPath(layoutDir, desc.Digest.String()))
		if err != nil {
			t.Fatalf("pack %d: failed to read manifest: %v", i, err)
		}
		var manifest ociv1.Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			t.Fatalf("pack %d: failed to unmarshal manifest: %v", i, err)
		}
		layerDigests = append(layerDigests, manifest.Layers[0].Digest.String())
	}

	if layerDigests[0] != layerDigests[1] {
		t.Errorf("layer digests differ across packs: %s vs %s", layerDigests[0], layerDigests[1])
	}
}

func blobPath(layoutDir, digest string) string {
	return filepath.Join(layoutDir, "blobs", "sha256", strings.TrimPrefix(digest, "sha256:"))
}

// extractLayerFiles decompresses a gzipped tar layer blob and returns its
// regular files keyed by name.
func extractLayerFiles(t *testing.T, path string) map[string]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open layer blob: %v", err)
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer gzr.Close()

	files := make(map[string]string)
	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read tar entry: %v", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("failed to read tar file content: %v", err)
		}
		files[header.Name] = string(content)
	}
	return files
}
