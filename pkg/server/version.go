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

package server

import (
	"net/http"
	"strings"
)

// DefaultAPIVersion is served when the client does not negotiate one.
const DefaultAPIVersion = "v1"

// mimeVersionPrefix is the vendor MIME prefix clients use to pin an API
// version, as in application/vnd.nvidia.krepis.v1+json.
const mimeVersionPrefix = "application/vnd.nvidia.krepis."

// supportedAPIVersions lists the versions this daemon can serve.
var supportedAPIVersions = map[string]bool{
	"v1": true,
}

// negotiateAPIVersion picks the API version from the Accept header. Each
// media type is checked against the vendor prefix; the first supported
// version wins. Absent or unknown versions fall back to DefaultAPIVersion.
func negotiateAPIVersion(r *http.Request) string {
	for _, media := range strings.Split(r.Header.Get("Accept"), ",") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(media), mimeVersionPrefix)
		if !ok {
			continue
		}
		version, _, _ := strings.Cut(rest, "+")
		if supportedAPIVersions[version] {
			return version
		}
	}
	return DefaultAPIVersion
}

// SetAPIVersionHeader reports the negotiated API version to the client.
func SetAPIVersionHeader(w http.ResponseWriter, version string) {
	w.Header().Set("X-API-Version", version)
}
