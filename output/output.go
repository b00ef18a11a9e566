// Package output persists extraction results as timestamped JSON and
// spreadsheet artifacts.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/use-agent/scrapeai/models"
)

// TimestampLayout is the artifact suffix format, YYYYMMDD_HHMMSS.
const TimestampLayout = "20060102_150405"

// filePrefix starts every artifact name.
const filePrefix = "sorted_data_"

// Timestamp formats t as an artifact suffix.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Path returns {dir}/sorted_data_{timestamp}.{ext}.
func Path(dir, timestamp, ext string) string {
	return filepath.Join(dir, filePrefix+timestamp+"."+ext)
}

// fieldLister is implemented by values that know their column order even
// when they hold no rows.
type fieldLister interface {
	Fields() []string
}

// Save writes data as indented JSON and, when its shape allows, as an XLSX
// table. Both files share timestamp.
//
// The JSON file is the durable guarantee: failing to write it is returned.
// A shape that cannot be flattened, or a failed spreadsheet write, is logged
// and yields a nil table with a nil error.
func Save(data any, timestamp, dir string) (*Table, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to create output directory", err)
	}

	raw, err := marshalIndent(data)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to encode result as JSON", err)
	}

	jsonPath := Path(dir, timestamp, "json")
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to write JSON output", err)
	}
	slog.Info("saved JSON", "path", jsonPath)

	value, err := decodeOrdered(raw)
	if err != nil {
		slog.Error("re-reading JSON output failed, skipping table", "error", err)
		return nil, nil
	}

	src, err := Resolve(value)
	if err != nil {
		slog.Warn("result cannot be flattened into rows, skipping table", "error", err)
		return nil, nil
	}

	var seed []string
	if fl, ok := data.(fieldLister); ok {
		seed = fl.Fields()
	}
	table := NewTable(src, seed)

	xlsxPath := Path(dir, timestamp, "xlsx")
	if err := table.WriteXLSX(xlsxPath); err != nil {
		slog.Error("failed to write spreadsheet", "path", xlsxPath, "error", err)
		return nil, nil
	}
	slog.Info("saved spreadsheet", "path", xlsxPath, "rows", table.Len())

	return table, nil
}

// SaveMarkdown writes the converted page text next to the other artifacts.
func SaveMarkdown(text, timestamp, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := Path(dir, timestamp, "md")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return path, nil
}

// SaveCSV writes table as sorted_data_{timestamp}.csv.
func SaveCSV(table *Table, timestamp, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := Path(dir, timestamp, "csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	if err := table.WriteCSV(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}
	return path, nil
}

func marshalIndent(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
