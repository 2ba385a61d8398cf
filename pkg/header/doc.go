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

// Package header provides common header types for krepis data structures.
//
// This package defines the Header type used across platform configuration
// documents, load reports, and module listings to provide consistent metadata
// and versioning information.
//
// # Usage
//
// Create a header for a platform configuration document:
//
//	h := header.New(
//	    header.WithKind(header.KindPlatformConfig),
//	    header.WithAPIVersion("v1"),
//	    header.WithMetadata("version", "v1.0.0"),
//	)
//
// Or initialize in place with a timestamp:
//
//	var h header.Header
//	h.Init(header.KindLoadReport, "v1", version)
//
// # Serialization
//
// Headers serialize consistently to JSON and YAML:
//
//	{
//	  "apiVersion": "v1",
//	  "kind": "PlatformConfig",
//	  "metadata": {
//	    "timestamp": "2025-12-30T10:30:00Z",
//	    "version": "v1.0.0"
//	  }
//	}
//
// # Kind Field
//
// The Kind field identifies the resource type:
//   - PlatformConfig: Platform-to-module configuration document
//   - LoadReport: Result of a batch load operation
//   - ModuleList: Inventory of installed modules
//
// Tools should check APIVersion before parsing:
//
//	if h.APIVersion != "v1" {
//	    return fmt.Errorf("unsupported API version: %s", h.APIVersion)
//	}
package header
