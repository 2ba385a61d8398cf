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

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse failures.
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
)

// Version is a module version with up to three numeric components.
// Precision records how many components the source string carried, so a
// loose version like "1.2" can stand for any 1.2.x release. Pre-release
// and build suffixes such as "-rc.1" or "+build.7" are preserved in
// Extras but never compared.
type Version struct {
	Major int `json:"major,omitempty" yaml:"major,omitempty"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Precision is the number of significant components (1, 2, or 3).
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Extras preserves any suffix after the numeric components, e.g. "-rc.1".
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// New returns a full-precision Version.
func New(major, minor, patch int) Version {
	return Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Precision: 3,
	}
}

// String renders the significant components: "2" at precision 1, "2.1" at
// precision 2, "2.1.0" otherwise. Extras are not included.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Parse parses a module version string. Accepted forms are "1", "1.2",
// "1.2.3", an optional leading "v", and an optional suffix introduced by
// "-" or "+" after the numeric components ("1.2.0-rc.1", "2.0.0+build.7").
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")

	var v Version
	main := s
	// A suffix starts at the first '-' or '+' that follows a digit, so a
	// negative component like "1.-2" still fails as non-numeric below.
	if i := suffixIndex(s); i > 0 {
		main, v.Extras = s[:i], s[i:]
	}

	parts := strings.Split(main, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	components := [3]*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if n < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, n)
		}
		*components[i] = n
	}

	v.Precision = len(parts)
	return v, nil
}

// suffixIndex returns the byte offset where a pre-release or build suffix
// begins, or -1 when the string has none.
func suffixIndex(s string) int {
	for i := 1; i < len(s); i++ {
		if (s[i] == '-' || s[i] == '+') && s[i-1] >= '0' && s[i-1] <= '9' {
			return i
		}
	}
	return -1
}

// MustParse parses a version string and panics on failure. Reserve it for
// hardcoded strings and test data; runtime input goes through Parse.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse: %v", err))
	}
	return v
}

// Equals reports whether all three components match, regardless of
// precision. Extras are ignored.
func (v Version) Equals(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
}

// EqualsOrNewer reports whether v is at least other, compared up to v's
// precision. A loose version like 1.2 accepts any 1.2.x release.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.compareFirst(other, v.effectivePrecision()) >= 0
}

// IsNewer reports whether v is strictly newer than other, compared up to
// v's precision.
func (v Version) IsNewer(other Version) bool {
	return v.compareFirst(other, v.effectivePrecision()) > 0
}

// Compare returns -1, 0, or 1 ordering v against other at the looser of
// the two precisions. Useful for sorting.
func (v Version) Compare(other Version) int {
	return v.compareFirst(other, min(v.effectivePrecision(), other.effectivePrecision()))
}

// IsValid reports whether the components are non-negative and the
// precision is in range.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}

// compareFirst compares the first n components of v and other.
func (v Version) compareFirst(other Version, n int) int {
	for i := 0; i < n; i++ {
		a, b := v.component(i), other.component(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func (v Version) component(i int) int {
	switch i {
	case 0:
		return v.Major
	case 1:
		return v.Minor
	default:
		return v.Patch
	}
}

// effectivePrecision treats an out-of-range precision as full so that
// zero-value versions compare on every component.
func (v Version) effectivePrecision() int {
	if v.Precision < 1 || v.Precision > 3 {
		return 3
	}
	return v.Precision
}
