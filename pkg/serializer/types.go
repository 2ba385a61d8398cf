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

package serializer

import (
	"context"
	"path/filepath"
	"strings"
)

// Format identifies an output encoding for krepis resources.
type Format string

const (
	// FormatJSON encodes resources as indented JSON.
	FormatJSON Format = "json"

	// FormatYAML encodes resources as YAML.
	FormatYAML Format = "yaml"

	// FormatTable renders resources as a flattened FIELD/VALUE table
	// for terminal output. Table output is write-only.
	FormatTable Format = "table"
)

// IsUnknown reports whether f is not one of the supported formats.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats lists the formats accepted by --output flags.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// extension returns the file extension used in ConfigMap resource keys.
func (f Format) extension() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// FormatFromPath infers the resource format from a file extension.
// Unrecognized extensions default to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".table", ".txt":
		return FormatTable
	default:
		return FormatJSON
	}
}

// Serializer writes a resource to some destination in a configured format.
// Implementations include Writer (stdout or file) and ConfigMapWriter.
type Serializer interface {
	Serialize(ctx context.Context, resource any) error
}

// Closer is implemented by serializers and readers that hold releasable
// resources, such as open files or downloaded temporaries.
type Closer interface {
	Close() error
}
