// Package results reshapes probe observations into a wide per-model table,
// persists it as CSV and reloads historical runs.
package results

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mwiater/chatlat/internal/benchmark"
	"github.com/mwiater/chatlat/internal/prompts"
)

// Key identifies one raw column: a prompt type at one iteration.
type Key struct {
	PromptType prompts.Type
	Iteration  int
}

// String renders the column header, e.g. "short.1".
func (k Key) String() string {
	return fmt.Sprintf("%s.%d", k.PromptType, k.Iteration)
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Key{}, fmt.Errorf("malformed column %q", s)
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 1 {
		return Key{}, fmt.Errorf("malformed iteration in column %q", s)
	}
	return Key{PromptType: prompts.Type(s[:i]), Iteration: n}, nil
}

// AverageColumn names the derived mean column for a prompt type, e.g. "short_avg".
func AverageColumn(pt prompts.Type) string { return string(pt) + "_avg" }

// Cell is a duration in seconds, or missing when Valid is false.
type Cell struct {
	Seconds float64
	Valid   bool
}

// Missing is the explicit marker for an absent measurement.
var Missing = Cell{}

// Value returns a present cell.
func Value(seconds float64) Cell { return Cell{Seconds: seconds, Valid: true} }

func (c Cell) String() string {
	if !c.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(c.Seconds, 'f', 3, 64)
}

// Table is the wide form: one row per model, one column per Key.
// Every model has a cell for every key; failed probes are Missing.
type Table struct {
	models []string
	keys   []Key
	cells  map[string]map[Key]Cell
}

// FromObservations groups observations by model in first-seen order. Columns
// are ordered by prompt type (first-seen) then ascending iteration.
func FromObservations(obs []benchmark.Observation) *Table {
	b := newBuilder()
	for _, o := range obs {
		cell := Missing
		if !o.Failed() {
			cell = Value(o.Seconds())
		}
		b.set(o.Model, Key{PromptType: o.PromptType, Iteration: o.Iteration}, cell)
	}
	return b.build()
}

type builder struct {
	models     []string
	seenModels map[string]bool
	types      []prompts.Type
	seenTypes  map[prompts.Type]bool
	iterations map[prompts.Type]map[int]bool
	cells      map[string]map[Key]Cell
}

func newBuilder() *builder {
	return &builder{
		seenModels: map[string]bool{},
		seenTypes:  map[prompts.Type]bool{},
		iterations: map[prompts.Type]map[int]bool{},
		cells:      map[string]map[Key]Cell{},
	}
}

func (b *builder) addModel(model string) {
	if b.seenModels[model] {
		return
	}
	b.seenModels[model] = true
	b.models = append(b.models, model)
	b.cells[model] = map[Key]Cell{}
}

func (b *builder) addKey(k Key) {
	if !b.seenTypes[k.PromptType] {
		b.seenTypes[k.PromptType] = true
		b.types = append(b.types, k.PromptType)
		b.iterations[k.PromptType] = map[int]bool{}
	}
	b.iterations[k.PromptType][k.Iteration] = true
}

func (b *builder) set(model string, k Key, c Cell) {
	b.addModel(model)
	b.addKey(k)
	b.cells[model][k] = c
}

func (b *builder) build() *Table {
	t := &Table{models: b.models, cells: b.cells}
	for _, pt := range b.types {
		its := make([]int, 0, len(b.iterations[pt]))
		for it := range b.iterations[pt] {
			its = append(its, it)
		}
		sort.Ints(its)
		for _, it := range its {
			t.keys = append(t.keys, Key{PromptType: pt, Iteration: it})
		}
	}
	for _, m := range t.models {
		for _, k := range t.keys {
			if _, ok := t.cells[m][k]; !ok {
				t.cells[m][k] = Missing
			}
		}
	}
	return t
}

// Models returns the row labels in order.
func (t *Table) Models() []string { return append([]string(nil), t.models...) }

// Keys returns the raw column keys in order.
func (t *Table) Keys() []Key { return append([]Key(nil), t.keys...) }

// PromptTypes returns the distinct prompt types in column order.
func (t *Table) PromptTypes() []prompts.Type {
	var out []prompts.Type
	seen := map[prompts.Type]bool{}
	for _, k := range t.keys {
		if !seen[k.PromptType] {
			seen[k.PromptType] = true
			out = append(out, k.PromptType)
		}
	}
	return out
}

// Iterations returns the iteration numbers recorded for a prompt type.
func (t *Table) Iterations(pt prompts.Type) []int {
	var out []int
	for _, k := range t.keys {
		if k.PromptType == pt {
			out = append(out, k.Iteration)
		}
	}
	return out
}

// Cell returns the value at (model, key); unknown coordinates are Missing.
func (t *Table) Cell(model string, k Key) Cell {
	row, ok := t.cells[model]
	if !ok {
		return Missing
	}
	return row[k]
}

// Average is the mean of the present iteration cells for (model, prompt type).
// It is Missing when no iteration succeeded.
func (t *Table) Average(model string, pt prompts.Type) Cell {
	var sum float64
	var n int
	for _, k := range t.keys {
		if k.PromptType != pt {
			continue
		}
		c := t.Cell(model, k)
		if !c.Valid {
			continue
		}
		sum += c.Seconds
		n++
	}
	if n == 0 {
		return Missing
	}
	return Value(sum / float64(n))
}

// AverageRow holds the derived per-prompt-type means for one model.
type AverageRow struct {
	Model  string
	Values map[prompts.Type]Cell
}

// Averages returns one AverageRow per model in table order.
func (t *Table) Averages() []AverageRow {
	types := t.PromptTypes()
	rows := make([]AverageRow, 0, len(t.models))
	for _, m := range t.models {
		row := AverageRow{Model: m, Values: make(map[prompts.Type]Cell, len(types))}
		for _, pt := range types {
			row.Values[pt] = t.Average(m, pt)
		}
		rows = append(rows, row)
	}
	return rows
}

// MissingCells counts failed or absent measurements.
func (t *Table) MissingCells() int {
	n := 0
	for _, m := range t.models {
		for _, k := range t.keys {
			if !t.cells[m][k].Valid {
				n++
			}
		}
	}
	return n
}
