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

package config

import (
	"fmt"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/serializer"
)

// FromSource loads and validates a platform configuration document from a
// local file path, an HTTP/HTTPS URL, or a Kubernetes ConfigMap URI
// (cm://namespace/name). The kubeconfig argument is only used for ConfigMap
// sources; empty means default discovery.
//
// An unreadable or unparseable source is ErrCodeConfigMissing. A document
// that reads fine but fails validation keeps the validation error code.
func FromSource(source, kubeconfig string) (*Document, error) {
	doc, err := serializer.FromFileWithKubeconfig[Document](source, kubeconfig)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfigMissing,
			fmt.Sprintf("failed to load platform configuration from %q", source), err,
			map[string]any{"source": source})
	}

	if doc.Platforms == nil {
		doc.Platforms = make(map[string]Platform)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}
