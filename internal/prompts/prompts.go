// Package prompts holds the fixed prompt catalog used by latency probes.
package prompts

import (
	"fmt"
	"strings"
)

// Type labels a prompt size category.
type Type string

const (
	Short  Type = "short"
	Medium Type = "medium"
	Long   Type = "long"
)

// SystemPreamble is sent as the system message of every probe.
const SystemPreamble = "You are the wise advisor to the king of a great kingdom. The king often seeks your counsel " +
	"on matters of state, diplomacy, and strategy. Provide advice based on the information given to you."

// Entry is one labelled prompt.
type Entry struct {
	Type Type
	Text string
}

// Catalog is an ordered, immutable set of prompts keyed by Type.
type Catalog struct {
	entries []Entry
	index   map[Type]int
}

// New builds a catalog from entries in the given order. Labels must be unique
// and texts non-empty.
func New(entries ...Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("prompt catalog requires at least one entry")
	}
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[Type]int, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(string(e.Type)) == "" {
			return nil, fmt.Errorf("prompt label must not be empty")
		}
		if strings.TrimSpace(e.Text) == "" {
			return nil, fmt.Errorf("prompt %q has empty text", e.Type)
		}
		if _, dup := c.index[e.Type]; dup {
			return nil, fmt.Errorf("duplicate prompt label %q", e.Type)
		}
		c.index[e.Type] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Default returns the built-in short/medium/long catalog.
func Default() *Catalog {
	c, err := New(
		Entry{Type: Short, Text: shortPrompt},
		Entry{Type: Medium, Text: mediumPrompt},
		Entry{Type: Long, Text: longPrompt},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Types returns the prompt labels in catalog order.
func (c *Catalog) Types() []Type {
	out := make([]Type, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Type
	}
	return out
}

// Entries returns a copy of the catalog entries in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the text and character length for a label.
func (c *Catalog) Lookup(t Type) (string, int, bool) {
	i, ok := c.index[t]
	if !ok {
		return "", 0, false
	}
	text := c.entries[i].Text
	return text, len([]rune(text)), true
}

// Len reports the number of prompts.
func (c *Catalog) Len() int { return len(c.entries) }

const shortPrompt = "A neighboring kingdom has proposed a trade deal. What should I consider?"

const mediumPrompt = "A neighboring kingdom to our east, known for its vast resources, has proposed a significant trade deal. " +
	"This proposal comes at a time when our kingdom's economy has been struggling and is in need of a boost. The eastern kingdom offers a variety of goods " +
	"including rare minerals, spices, and other valuable items that are not readily available in our land. " +
	"In return, they are asking for our expertise in craftsmanship, textiles, and some military assistance in the form of training their soldiers. " +
	"Historically, our two kingdoms have had a tumultuous relationship with skirmishes and minor conflicts over border disputes. However, in recent years, " +
	"there have been efforts from both sides to establish a peaceful relationship. Some of our advisors are in favor of this deal, citing the potential economic benefits. " +
	"Others, however, are wary due to our past conflicts and the potential hidden agenda of the eastern kingdom. Given all this information, " +
	"how should we approach this proposal?"

const longPrompt = "A neighboring kingdom, situated to the east of our borders and known for its vast resources and rich history, has approached us with a proposal for a grand trade deal. " +
	"This comes at a crucial juncture when our own kingdom is facing economic challenges and is in dire need of resources to support our populace. The eastern kingdom, " +
	"ruled by King Eldric, has always been a formidable force in the region. They boast a thriving marketplace, fertile lands, and a strong military. Their proposal is enticing: " +
	"they offer a steady supply of rare minerals, exotic spices, precious stones, and access to their trading partners from distant lands. In return, they seek our skilled labor, " +
	"our renowned textiles, and military assistance against potential threats from the northern tribes. Historically, our interactions with them have been a mix of cooperation and conflict. " +
	"There were times when our ancestors stood shoulder to shoulder against common enemies, and times when we were at odds, competing for territory and resources. Recent diplomatic efforts have been positive, " +
	"but the memories of past conflicts still linger. Our council is divided on the issue. Some see this as a golden opportunity to uplift our economy and establish a long-term ally. Others are skeptical, " +
	"citing past betrayals and the possibility of this being a ruse to gain a strategic advantage over us. As the ruler, the final decision rests upon your shoulders. How should we navigate this complex situation, " +
	"weighing the potential benefits against the risks? What strategies should we employ to ensure the best outcome for our people and the future of our kingdom?"
