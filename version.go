package quire

import _ "embed"

// Version exposes the library version, embedded from the VERSION file so
// release tooling has a single place to bump.
//
//go:embed VERSION
var Version string
