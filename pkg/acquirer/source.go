// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package acquirer

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/NVIDIA/krepis/pkg/errors"
)

const (
	// OCIScheme prefixes module sources that are pulled from an OCI registry.
	OCIScheme = "oci://"

	// FileScheme prefixes module sources that are copied from a local directory.
	// Plain paths without a scheme are treated as local as well.
	FileScheme = "file://"

	// DefaultTag is used when an OCI source omits an explicit tag.
	DefaultTag = "latest"
)

// Source is a parsed module install source: either an OCI artifact
// reference or a local directory.
type Source struct {
	// IsOCI indicates the source is an OCI registry reference.
	IsOCI bool

	// Registry is the OCI registry host (e.g., ghcr.io, localhost:5000).
	Registry string

	// Repository is the OCI repository path (e.g., nvidia/krepis-module).
	Repository string

	// Tag is the OCI artifact tag.
	Tag string

	// LocalPath is the directory path for local sources.
	LocalPath string
}

// Reference returns the full OCI reference (registry/repository:tag).
// Empty for local sources.
func (s *Source) Reference() string {
	if !s.IsOCI {
		return ""
	}
	return fmt.Sprintf("%s/%s:%s", s.Registry, s.Repository, s.Tag)
}

// String returns the source in its canonical URI form.
func (s *Source) String() string {
	if s.IsOCI {
		return OCIScheme + s.Reference()
	}
	return s.LocalPath
}

// ParseSource determines whether a module source names an OCI artifact or a
// local directory and validates it accordingly.
//
// Supported forms:
//   - oci://ghcr.io/nvidia/krepis-module:1.2.0 (OCI artifact, tag optional)
//   - file:///opt/modules/krepis-module (local directory)
//   - /opt/modules/krepis-module or ./krepis-module (local directory)
func ParseSource(raw string) (*Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "module source is required")
	}

	if strings.HasPrefix(trimmed, OCIScheme) {
		return parseOCISource(strings.TrimPrefix(trimmed, OCIScheme))
	}

	return &Source{
		LocalPath: strings.TrimPrefix(trimmed, FileScheme),
	}, nil
}

// parseOCISource validates an OCI reference and splits it into its parts.
// Validation uses the same normalization rules as the container toolchain,
// so shortnames like "mod-a:1.0" resolve against docker.io rather than
// failing obscurely at pull time.
func parseOCISource(ref string) (*Source, error) {
	if ref == "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "OCI source is missing a reference")
	}

	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid OCI reference %q", ref), err,
			map[string]any{"reference": ref})
	}

	if _, ok := named.(reference.Digested); ok {
		// Digest pins are accepted by the parser but the store keys modules
		// by name:tag, so require a tagged form.
		return nil, errors.NewWithContext(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("OCI reference %q must use a tag, not a digest", ref),
			map[string]any{"reference": ref})
	}

	tag := DefaultTag
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return &Source{
		IsOCI:      true,
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
		Tag:        tag,
	}, nil
}
