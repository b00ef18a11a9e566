package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the in-memory tabular view of a result: one row per record.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable flattens src. Columns start with seed, followed by any other key
// in first-seen order across rows.
func NewTable(src TabularSource, seed []string) *Table {
	t := &Table{}
	index := make(map[string]int)
	addColumn := func(name string) {
		if _, ok := index[name]; ok {
			return
		}
		index[name] = len(t.Columns)
		t.Columns = append(t.Columns, name)
	}

	for _, c := range seed {
		addColumn(c)
	}
	rows := src.Rows()
	for _, r := range rows {
		for _, k := range r.Keys {
			addColumn(k)
		}
	}

	for _, r := range rows {
		row := make([]string, len(t.Columns))
		for k, v := range r.Values {
			row[index[k]] = cellString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	for i, c := range t.Columns {
		if c != name {
			continue
		}
		out := make([]string, len(t.Rows))
		for j, row := range t.Rows {
			out[j] = row[i]
		}
		return out
	}
	return nil
}

// WriteXLSX writes the header and rows to the first sheet of a new workbook.
func (t *Table) WriteXLSX(path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	sheet := f.GetSheetName(0)
	if len(t.Columns) > 0 {
		if err := f.SetSheetRow(sheet, "A1", toCells(t.Columns)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, toCells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the header and rows as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}

// cellString renders a decoded JSON value for a single cell.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		var b strings.Builder
		writeCompact(&b, v)
		return b.String()
	}
}

// writeCompact re-encodes nested values, keeping object key order.
func writeCompact(b *strings.Builder, v any) {
	switch t := v.(type) {
	case *Object:
		b.WriteByte('{')
		for i, k := range t.Keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			writeCompact(b, t.Values[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCompact(b, item)
		}
		b.WriteByte(']')
	case json.Number:
		b.WriteString(t.String())
	default:
		vb, _ := json.Marshal(t)
		b.Write(vb)
	}
}
