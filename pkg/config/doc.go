// Package config defines the platform configuration document: the mapping
// from platform ids to the modules that back them and the sources those
// modules install from.
//
// The canonical on-disk form is JSON (YAML is accepted on read):
//
//	{
//	  "platforms": {
//	    "web":       {"module": "krepis-platform-web", "source": "oci://ghcr.io/nvidia/krepis/krepis-platform-web:latest"},
//	    "windows10": {"module": "krepis-platform-windows10", "source": "./modules/windows10"}
//	  }
//	}
//
// Store provides file-backed CRUD over the document with staged atomic
// writes. A built-in default document is embedded for first use, and
// ApplyOverrides supports --set style <platform>.<field>=<value> edits.
package config
