package header

import (
	"encoding/json"
	"testing"
	"time"
)

const testAPIVersion = "krepis.nvidia.com/v1alpha1"

func TestKind_String(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{
			name: "PlatformConfig kind",
			kind: KindPlatformConfig,
			want: "PlatformConfig",
		},
		{
			name: "LoadReport kind",
			kind: KindLoadReport,
			want: "LoadReport",
		},
		{
			name: "ModuleList kind",
			kind: KindModuleList,
			want: "ModuleList",
		},
		{
			name: "Custom kind",
			kind: Kind("CustomKind"),
			want: "CustomKind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_IsValid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want bool
	}{
		{
			name: "PlatformConfig is valid",
			kind: KindPlatformConfig,
			want: true,
		},
		{
			name: "LoadReport is valid",
			kind: KindLoadReport,
			want: true,
		},
		{
			name: "ModuleList is valid",
			kind: KindModuleList,
			want: true,
		},
		{
			name: "Empty kind is invalid",
			kind: Kind(""),
			want: false,
		},
		{
			name: "Case sensitive - lowercase is invalid",
			kind: Kind("loadreport"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.IsValid(); got != tt.want {
				t.Errorf("Kind.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	h := New(
		WithKind(KindLoadReport),
		WithAPIVersion(testAPIVersion),
		WithMetadata("version", "v1.0.0"),
		WithMetadata("host", "worker-1"),
	)

	if h.Kind != KindLoadReport {
		t.Errorf("Kind = %v, want %v", h.Kind, KindLoadReport)
	}
	if h.APIVersion != testAPIVersion {
		t.Errorf("APIVersion = %v, want %v", h.APIVersion, testAPIVersion)
	}
	if h.Metadata["version"] != "v1.0.0" || h.Metadata["host"] != "worker-1" {
		t.Errorf("Metadata = %v", h.Metadata)
	}

	// Metadata map is usable without options.
	empty := New()
	if empty.Metadata == nil {
		t.Error("New() must initialize the metadata map")
	}
}

func TestInit(t *testing.T) {
	var h Header
	h.Init(KindPlatformConfig, testAPIVersion, "v2.1.0")

	if h.Kind != KindPlatformConfig || h.APIVersion != testAPIVersion {
		t.Errorf("unexpected header: %+v", h)
	}
	if h.Metadata["version"] != "v2.1.0" {
		t.Errorf("Metadata version = %v, want v2.1.0", h.Metadata["version"])
	}

	ts, ok := h.Metadata["timestamp"]
	if !ok {
		t.Fatal("expected a timestamp")
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}

	// Empty version leaves the key out.
	var h2 Header
	h2.Init(KindModuleList, testAPIVersion, "")
	if _, ok := h2.Metadata["version"]; ok {
		t.Error("empty version must not be recorded")
	}
}

func TestHeaderSerialization(t *testing.T) {
	h := New(
		WithKind(KindModuleList),
		WithAPIVersion(testAPIVersion),
		WithMetadata("version", "v1.0.0"),
	)

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Header
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Kind != KindModuleList || decoded.Metadata["version"] != "v1.0.0" {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
	if !decoded.Kind.IsValid() {
		t.Error("decoded kind must be valid")
	}
}
