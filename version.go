package zapflow

import _ "embed"

// Version is the release version, embedded from the VERSION file so the CLI,
// HTTP /info endpoint and MCP handshake all report the same value.
//
//go:embed VERSION
var Version string
