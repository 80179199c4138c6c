// Package data bundles a static product set used when the upstream service
// is unavailable or for offline runs of the CLI.
package data

import _ "embed"

//go:embed products.json
var Products []byte
