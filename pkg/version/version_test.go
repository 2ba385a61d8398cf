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
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Version
		wantErr  error
	}{
		{
			name:  "major only",
			input: "2",
			expected: Version{
				Major:     2,
				Precision: 1,
			},
		},
		{
			name:  "major.minor",
			input: "1.2",
			expected: Version{
				Major:     1,
				Minor:     2,
				Precision: 2,
			},
		},
		{
			name:  "full version",
			input: "1.2.3",
			expected: Version{
				Major:     1,
				Minor:     2,
				Patch:     3,
				Precision: 3,
			},
		},
		{
			name:  "v prefix",
			input: "v1.2.3",
			expected: Version{
				Major:     1,
				Minor:     2,
				Patch:     3,
				Precision: 3,
			},
		},
		{
			name:  "zeros",
			input: "0.0.0",
			expected: Version{
				Precision: 3,
			},
		},
		{
			name:  "pre-release suffix",
			input: "1.2.0-rc.1",
			expected: Version{
				Major:     1,
				Minor:     2,
				Precision: 3,
				Extras:    "-rc.1",
			},
		},
		{
			name:  "build metadata suffix",
			input: "2.0.0+build.7",
			expected: Version{
				Major:     2,
				Precision: 3,
				Extras:    "+build.7",
			},
		},
		{
			name:  "suffix on loose version",
			input: "1.2-beta",
			expected: Version{
				Major:     1,
				Minor:     2,
				Precision: 2,
				Extras:    "-beta",
			},
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrEmptyVersion,
		},
		{
			name:    "too many components",
			input:   "1.2.3.4",
			wantErr: ErrTooManyComponents,
		},
		{
			name:    "non-numeric component",
			input:   "a.b.c",
			wantErr: ErrNonNumeric,
		},
		{
			name:    "empty component",
			input:   "1..2",
			wantErr: ErrNonNumeric,
		},
		{
			name:    "bare v prefix",
			input:   "v",
			wantErr: ErrNonNumeric,
		},
		{
			name:    "negative major",
			input:   "-1",
			wantErr: ErrNegativeComponent,
		},
		{
			name:    "negative after dot is not a suffix",
			input:   "1.-2",
			wantErr: ErrNegativeComponent,
		},
		{
			name:    "whitespace is not trimmed",
			input:   " 1.2.3",
			wantErr: ErrNonNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		version  Version
		expected string
	}{
		{
			name:     "precision 1",
			version:  MustParse("2"),
			expected: "2",
		},
		{
			name:     "precision 2",
			version:  MustParse("2.1"),
			expected: "2.1",
		},
		{
			name:     "precision 3",
			version:  New(2, 1, 0),
			expected: "2.1.0",
		},
		{
			name:     "extras are dropped",
			version:  MustParse("1.2.0-rc.1"),
			expected: "1.2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.version.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMustParse(t *testing.T) {
	if v := MustParse("1.2.3"); !v.Equals(New(1, 2, 3)) {
		t.Errorf("MustParse(1.2.3) = %+v", v)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid version")
		}
	}()
	MustParse("not-a-version")
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		name          string
		v             string
		other         string
		equalsOrNewer bool
		isNewer       bool
		compare       int
	}{
		{
			name:          "equal full versions",
			v:             "1.2.3",
			other:         "1.2.3",
			equalsOrNewer: true,
			isNewer:       false,
			compare:       0,
		},
		{
			name:          "newer patch",
			v:             "1.2.4",
			other:         "1.2.3",
			equalsOrNewer: true,
			isNewer:       true,
			compare:       1,
		},
		{
			name:          "older major",
			v:             "1.9.9",
			other:         "2.0.0",
			equalsOrNewer: false,
			isNewer:       false,
			compare:       -1,
		},
		{
			name:          "loose version accepts any patch",
			v:             "1.2",
			other:         "1.2.7",
			equalsOrNewer: true,
			isNewer:       false,
			compare:       0,
		},
		{
			name:          "loose version with newer minor",
			v:             "1.3",
			other:         "1.2.7",
			equalsOrNewer: true,
			isNewer:       true,
			compare:       1,
		},
		{
			name:          "major-only comparison",
			v:             "2",
			other:         "1.9.9",
			equalsOrNewer: true,
			isNewer:       true,
			compare:       1,
		},
		{
			name:          "suffixes do not participate",
			v:             "1.2.0-rc.1",
			other:         "1.2.0",
			equalsOrNewer: true,
			isNewer:       false,
			compare:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MustParse(tt.v)
			other := MustParse(tt.other)

			if got := v.EqualsOrNewer(other); got != tt.equalsOrNewer {
				t.Errorf("EqualsOrNewer = %v, want %v", got, tt.equalsOrNewer)
			}
			if got := v.IsNewer(other); got != tt.isNewer {
				t.Errorf("IsNewer = %v, want %v", got, tt.isNewer)
			}
			if got := v.Compare(other); got != tt.compare {
				t.Errorf("Compare = %d, want %d", got, tt.compare)
			}
		})
	}
}

func TestEquals(t *testing.T) {
	if !New(1, 2, 3).Equals(MustParse("1.2.3-rc.1")) {
		t.Error("Equals should ignore extras")
	}
	if New(1, 2, 3).Equals(New(1, 2, 4)) {
		t.Error("Equals should compare all components")
	}
}

func TestIsValid(t *testing.T) {
	if !New(1, 2, 3).IsValid() {
		t.Error("full-precision version should be valid")
	}
	if (Version{}).IsValid() {
		t.Error("zero-value version should be invalid")
	}
	if (Version{Major: -1, Precision: 3}).IsValid() {
		t.Error("negative component should be invalid")
	}
	if (Version{Major: 1, Precision: 4}).IsValid() {
		t.Error("out-of-range precision should be invalid")
	}
}
