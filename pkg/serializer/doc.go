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

// Package serializer encodes and decodes krepis resources such as
// platform configuration documents, load reports, and module lists.
//
// # Formats
//
// Three formats are supported:
//   - json: indented JSON for API responses and scripting
//   - yaml: for configuration files and version control
//   - table: a flattened FIELD/VALUE view for terminals, write-only
//
// # Writing
//
// Write to stdout:
//
//	w := serializer.NewStdoutWriter(serializer.FormatYAML)
//	if err := w.Serialize(ctx, report); err != nil {
//	    return err
//	}
//
// Write to a destination chosen at runtime, where an empty path means
// stdout and cm://namespace/name means a Kubernetes ConfigMap:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatJSON, path)
//	if c, ok := w.(serializer.Closer); ok {
//	    defer c.Close()
//	}
//	return w.Serialize(ctx, report)
//
// HTTP handlers respond with:
//
//	serializer.RespondJSON(rw, http.StatusOK, report)
//
// # Reading
//
// FromFile loads a typed resource in one call from a local path, an
// http(s) URL, or a ConfigMap URI, inferring the format from the
// extension (.json, .yaml, .yml; anything else decodes as JSON):
//
//	doc, err := serializer.FromFile[config.Document]("/etc/krepis/platforms.yaml")
//	doc, err := serializer.FromFile[config.Document]("cm://krepis-system/krepis-platforms")
//
// Lower-level control is available through NewFileReader and Reader's
// Deserialize method. Close readers that open files; Close is safe to
// call on any reader and more than once.
package serializer
