package chatlat

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandInfo holds the path and description of a command for display.
type commandInfo struct {
	path        string
	description string
}

// runListCommands prints the command tree in a two-column layout, leaving out
// cobra's generated help and completion commands.
func runListCommands(out io.Writer, root *cobra.Command) {
	var rows []commandInfo
	width := 0
	for _, data := range collectCommandData(root, "", "") {
		if strings.Contains(data.path, "completion") || strings.HasSuffix(data.path, " help") {
			continue
		}
		if len(data.path) > width {
			width = len(data.path)
		}
		rows = append(rows, data)
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, data := range rows {
		fmt.Fprintf(out, "  %-*s  %s\n", width, data.path, data.description)
	}
}

// collectCommandData walks the command tree depth-first and returns a
// flattened slice of indented path/description pairs.
func collectCommandData(cmd *cobra.Command, parentPath, indent string) []commandInfo {
	fullPath := cmd.Name()
	if parentPath != "" {
		fullPath = parentPath + " " + cmd.Name()
	}

	all := []commandInfo{{path: indent + fullPath, description: cmd.Short}}
	for _, sub := range cmd.Commands() {
		all = append(all, collectCommandData(sub, fullPath, indent+"  ")...)
	}
	return all
}
