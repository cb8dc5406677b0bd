package chatlat

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/mwiater/chatlat/internal/prompts"
	"github.com/mwiater/chatlat/internal/util"
)

const wrapWidth = 76

// runShowPrompts prints the default catalog in benchmark order.
func runShowPrompts(out io.Writer) {
	catalog := prompts.Default()
	fmt.Fprintf(out, "System preamble (%d chars):\n%s\n\n", utf8.RuneCountInString(prompts.SystemPreamble), util.WrapIndent(prompts.SystemPreamble, wrapWidth, "  "))
	fmt.Fprintln(out, "Prompts:")
	for _, e := range catalog.Entries() {
		_, n, _ := catalog.Lookup(e.Type)
		fmt.Fprintf(out, "  %s (%d chars)\n%s\n", e.Type, n, util.WrapIndent(e.Text, wrapWidth, "    "))
	}
}
