package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mwiater/chatlat/internal/prompts"
)

const (
	// StampLayout is the hour-resolution run identifier embedded in file names.
	StampLayout = "2006010215"

	tablePrefix = "dataframe-"
	tableExt    = ".csv"
	modelHeader = "model"
)

// PersistenceError reports a failed read or write of a results artifact.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RunStamp formats t as a run identifier.
func RunStamp(t time.Time) string { return t.Format(StampLayout) }

// TableFileName returns the CSV file name for a run stamp.
func TableFileName(stamp string) string { return tablePrefix + stamp + tableExt }

// ParseTableFileName extracts the run time from a CSV file name.
func ParseTableFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, tablePrefix) || !strings.HasSuffix(name, tableExt) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, tablePrefix), tableExt)
	if len(stamp) != len(StampLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(StampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Writer persists tables into a results directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer { return &Writer{dir: dir} }

// EnsureDir creates the results directory if it does not exist.
func (w *Writer) EnsureDir() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return &PersistenceError{Op: "create results directory", Path: w.dir, Err: err}
	}
	return nil
}

// Path joins name onto the results directory.
func (w *Writer) Path(name string) string { return filepath.Join(w.dir, name) }

// Write stores t as dataframe-<stamp>.csv and returns the file path.
func (w *Writer) Write(t *Table, stamp string) (string, error) {
	if err := w.EnsureDir(); err != nil {
		return "", err
	}
	path := w.Path(TableFileName(stamp))
	file, err := os.Create(path)
	if err != nil {
		return "", &PersistenceError{Op: "create", Path: path, Err: err}
	}
	defer file.Close()

	if err := WriteCSV(file, t); err != nil {
		return "", &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return "", &PersistenceError{Op: "close", Path: path, Err: err}
	}
	log.Printf("Result table written to %s", path)
	return path, nil
}

// WriteCSV encodes the raw wide table. Missing cells are empty fields.
func WriteCSV(out io.Writer, t *Table) error {
	cw := csv.NewWriter(out)
	header := make([]string, 0, len(t.keys)+1)
	header = append(header, modelHeader)
	for _, k := range t.keys {
		header = append(header, k.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range t.models {
		record := make([]string, 0, len(header))
		record = append(record, m)
		for _, k := range t.keys {
			c := t.Cell(m, k)
			if !c.Valid {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(c.Seconds, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes a table written by WriteCSV.
func ReadCSV(in io.Reader) (*Table, error) {
	cr := csv.NewReader(in)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty table file")
	}
	header := records[0]
	if len(header) < 2 || header[0] != modelHeader {
		return nil, fmt.Errorf("unexpected header %v", header)
	}
	keys := make([]Key, len(header)-1)
	for i, col := range header[1:] {
		k, err := ParseKey(col)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	b := newBuilder()
	for _, k := range keys {
		b.addKey(k)
	}
	for line, rec := range records[1:] {
		model := rec[0]
		if strings.TrimSpace(model) == "" {
			return nil, fmt.Errorf("row %d has no model", line+2)
		}
		b.addModel(model)
		for i, field := range rec[1:] {
			field = strings.TrimSpace(field)
			if field == "" || strings.EqualFold(field, "nan") {
				b.set(model, keys[i], Missing)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", line+2, keys[i], err)
			}
			b.set(model, keys[i], Value(v))
		}
	}
	return b.build(), nil
}

// ReadTable loads one CSV table file.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()
	t, err := ReadCSV(file)
	if err != nil {
		return nil, &PersistenceError{Op: "parse", Path: path, Err: err}
	}
	return t, nil
}

// HistoricalRecord is one model's projected latency from one past run.
type HistoricalRecord struct {
	Time    time.Time
	Model   string
	Latency Cell
}

// DefaultTrendKey is the column projected by ScanHistory: short prompt, first iteration.
var DefaultTrendKey = Key{PromptType: prompts.Short, Iteration: 1}

// ScanHistory loads every dataframe-<stamp>.csv in the results directory and
// projects the column k from each. Records are sorted chronologically, then by
// the model order within each file. Unreadable or malformed files are skipped
// with a warning. A missing directory yields no records.
func (w *Writer) ScanHistory(k Key) ([]HistoricalRecord, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "read results directory", Path: w.dir, Err: err}
	}

	type run struct {
		at    time.Time
		table *Table
	}
	var runs []run
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := ParseTableFileName(entry.Name())
		if !ok {
			continue
		}
		path := w.Path(entry.Name())
		t, err := ReadTable(path)
		if err != nil {
			log.Printf("warning: skipping historical file: %v", err)
			continue
		}
		runs = append(runs, run{at: ts, table: t})
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].at.Before(runs[j].at) })

	var records []HistoricalRecord
	for _, r := range runs {
		for _, m := range r.table.Models() {
			records = append(records, HistoricalRecord{Time: r.at, Model: m, Latency: r.table.Cell(m, k)})
		}
	}
	return records, nil
}
