package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/krepis/pkg/errors"
)

// Override field names accepted by --set, matched case-insensitively.
const (
	fieldModule = "Module"
	fieldSource = "Source"
)

var fieldCaser = cases.Title(language.English)

// ParseOverrides parses --set flags of the form <platform>.<field>=<value>
// into a platform → field → value map. Field is module or source.
func ParseOverrides(pairs []string) (map[string]map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	overrides := make(map[string]map[string]string)
	for _, pair := range pairs {
		path, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid override %q, expected <platform>.<field>=<value>", pair))
		}

		id, field, ok := strings.Cut(path, ".")
		if !ok || id == "" || field == "" {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid override path %q, expected <platform>.<field>", path))
		}

		if overrides[id] == nil {
			overrides[id] = make(map[string]string)
		}
		overrides[id][field] = value
	}

	return overrides, nil
}

// ApplyOverrides mutates the document with parsed overrides. Every failed
// override is reported, not just the first.
func ApplyOverrides(doc *Document, overrides map[string]map[string]string) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "platform configuration is required")
	}
	if len(overrides) == 0 {
		return nil
	}

	var failed []string
	for id, fields := range overrides {
		entry, ok := doc.Platforms[id]
		if !ok {
			// Overrides may introduce platforms that the document does not
			// carry yet; both fields are then required.
			entry = Platform{}
		}

		for field, value := range fields {
			switch fieldCaser.String(field) {
			case fieldModule:
				entry.Module = value
			case fieldSource:
				entry.Source = value
			default:
				failed = append(failed, fmt.Sprintf("%s.%s: unknown field", id, field))
			}
		}

		doc.Platforms[id] = entry
	}

	if len(failed) > 0 {
		return errors.New(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("failed to apply overrides: %s", strings.Join(failed, "; ")))
	}

	return nil
}
