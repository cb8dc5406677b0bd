// cmd/chatlat/main.go
package main

import (
	cmd "github.com/mwiater/chatlat/internal/cli"
)

// Build metadata, overridden with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main injects build metadata and delegates to the cobra root command.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
