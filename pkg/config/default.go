package config

import (
	"bytes"
	_ "embed"

	"github.com/NVIDIA/krepis/pkg/errors"
)

//go:embed data/platforms.json
var defaultConfig []byte

// DefaultDocument returns the built-in platform configuration used when
// the registry is enabled without an explicit document and no local
// configuration file exists.
func DefaultDocument() (*Document, error) {
	doc, err := ParseDocument(bytes.NewReader(defaultConfig))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigMissing,
			"built-in platform configuration cannot be parsed", err)
	}
	return doc, nil
}
