/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package acquirer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// ArtifactType is the media type for krepis module OCI artifacts.
const ArtifactType = "application/vnd.nvidia.krepis.module"

// pull fetches an OCI module artifact into the stage directory using ORAS.
// The artifact layer carries the module directory; the file store unpacks
// it at the stage root.
func (i *Installer) pull(ctx context.Context, src *Source, stage string) error {
	absStage, err := filepath.Abs(stage)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for stage dir: %w", err)
	}

	fs, err := file.New(absStage)
	if err != nil {
		return fmt.Errorf("failed to create file store: %w", err)
	}
	defer func() { _ = fs.Close() }()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", src.Registry, src.Repository))
	if err != nil {
		return fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.PlainHTTP = i.plainHTTP
	repo.Client = createAuthClient(i.plainHTTP, i.insecureTLS)

	desc, err := oras.Copy(ctx, repo, src.Tag, fs, src.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return fmt.Errorf("failed to pull artifact from registry: %w", err)
	}

	if desc.ArtifactType != "" && desc.ArtifactType != ArtifactType {
		return fmt.Errorf("artifact %s has unexpected type %q", src.Reference(), desc.ArtifactType)
	}

	return nil
}

// PushOptions configures publishing a local module directory as an OCI artifact.
type PushOptions struct {
	// ModuleDir is the module directory containing module.yaml.
	ModuleDir string
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the artifact repository path (e.g., "nvidia/krepis-module").
	Repository string
	// Tag is the artifact tag (e.g., "1.2.0", "latest").
	Tag string
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult contains the result of a successful OCI push.
type PushResult struct {
	// Digest is the SHA256 digest of the pushed artifact.
	Digest string
	// Reference is the full artifact reference (registry/repository:tag).
	Reference string
}

// Push publishes a module directory to an OCI registry using ORAS. The
// resulting artifact is what Installer.pull consumes on the other side.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, fmt.Errorf("tag is required to push a module artifact")
	}

	registryHost := stripProtocol(opts.Registry)
	refString := fmt.Sprintf("%s/%s:%s", registryHost, opts.Repository, opts.Tag)
	if _, err := ParseSource(OCIScheme + refString); err != nil {
		return nil, err
	}

	fs, err := packModuleArtifact(ctx, opts.ModuleDir, opts.Tag)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fs.Close() }()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", registryHost, opts.Repository))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, fs, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to push artifact to registry: %w", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: refString,
	}, nil
}

// packModuleArtifact stages a module directory as a tagged OCI artifact in a
// local file store, ready to be copied to a registry.
func packModuleArtifact(ctx context.Context, moduleDir, tag string) (*file.Store, error) {
	absModuleDir, err := filepath.Abs(moduleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for module dir: %w", err)
	}

	fs, err := file.New(absModuleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}

	// Make tars deterministic so repeated pushes of the same module
	// produce the same layer digest.
	fs.TarReproducible = true

	layerDesc, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absModuleDir)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to add module directory to store: %w", err)
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers: []ociv1.Descriptor{layerDesc},
		})
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to pack manifest: %w", err)
	}

	if err := fs.Tag(ctx, manifestDesc, tag); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to tag manifest in local store: %w", err)
	}

	return fs, nil
}

// stripProtocol removes http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
}
