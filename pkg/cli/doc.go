// Package cli implements the command-line interface for the krepis tool.
//
// # Overview
//
// The krepis CLI manages the platform configuration document, the local
// module store, and on-demand module loading. It is designed for operators
// wiring platform identifiers to installable modules and verifying that
// workloads can load them.
//
// # Commands
//
// load - Load the modules backing one or more platform ids:
//
//	krepis load web android [--config FILE|URL|cm://ns/name] [--format yaml|json|table]
//
// Resolves every requested platform id, installs missing modules from their
// configured sources, and reports the settled outcome of every load task.
// Platform ids that share a backing module receive one shared instance, and
// one failing platform never aborts the rest of the batch.
//
// platforms - Manage platform to module mappings:
//
//	krepis platforms list [--config SOURCE]
//	krepis platforms add ios --module mod-mobile --source ./modules/mobile
//	krepis platforms remove ios
//	krepis platforms enable --from https://example.com/platforms.json
//
// list shows every registered platform with its backing module and load
// state. add and remove edit the local configuration document. enable
// imports a remote document into the local store after validation.
//
// modules - Manage the local module store:
//
//	krepis modules list
//	krepis modules install mod-web --source ./modules/web
//	krepis modules remove mod-web
//	krepis modules push mod-web --registry ghcr.io --repository nvidia/krepis/mod-web --tag 1.2.0
//
// push publishes an installed module as an OCI artifact that other hosts can
// install with --source oci://.
//
// serve - Run the HTTP API:
//
//	krepis serve [--port 8080] [--config SOURCE]
//
// Serves the same registry and loader over HTTP; see pkg/api for the
// endpoint surface.
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Formats
//
// Commands that emit documents accept --format yaml (default), json, or
// table, and --output to write to a file or a cm://namespace/name
// ConfigMap instead of stdout.
//
// # Environment Variables
//
//	LOG_LEVEL           Set logging verbosity (debug, info, warn, error)
//	KREPIS_CONFIG       Default platform configuration source
//	KREPIS_MODULES_DIR  Default module store directory
//	KUBECONFIG          Kubeconfig used for cm:// sources and outputs
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure, failed loads)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized
// packages:
//   - pkg/platforms - Registry, module store, and loader facade
//   - pkg/config - Platform configuration document and store
//   - pkg/serializer - Output formatting
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/krepis/pkg/cli.version=1.0.0'"
package cli
