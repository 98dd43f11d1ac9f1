// Package parquetio exports normalized tables as Parquet files and reads
// them back. Every column is an optional string, matching the frame model.
package parquetio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/scuolestats/internal/frame"
)

// columnsKey is the footer metadata entry holding the frame column order;
// the schema itself orders fields by name.
const columnsKey = "scuolestats.columns"

// Schema returns the Parquet schema of f: one optional UTF-8 column per
// frame column.
func Schema(name string, f *frame.Frame) *parquet.Schema {
	group := parquet.Group{}
	for _, c := range f.Columns() {
		group[c] = parquet.Optional(parquet.String())
	}
	return parquet.NewSchema(name, group)
}

// WriteFile writes f to dir/<table>.parquet and returns the path.
func WriteFile(dir, table string, f *frame.Frame) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create parquet dir: %w", err)
	}
	path := filepath.Join(dir, table+".parquet")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, table, f); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// Write encodes f as a single Parquet file on w.
func Write(w io.Writer, table string, f *frame.Frame) error {
	cols := f.Columns()
	order, err := json.Marshal(cols)
	if err != nil {
		return err
	}

	// Leaf index of each column in the schema, which sorts fields by name.
	sorted := append([]string(nil), cols...)
	sort.Strings(sorted)
	leaf := make(map[string]int, len(sorted))
	for i, c := range sorted {
		leaf[c] = i
	}
	pos := make([]int, len(cols))
	for j, c := range cols {
		pos[leaf[c]] = j
	}

	pw := parquet.NewWriter(w, Schema(table, f), parquet.KeyValueMetadata(columnsKey, string(order)))

	const batch = 1024
	rows := make([]parquet.Row, 0, batch)
	for i := 0; i < f.Len(); i++ {
		src := f.Row(i)
		row := make(parquet.Row, len(cols))
		for li, j := range pos {
			if v := src[j]; v.Valid {
				row[li] = parquet.ValueOf(v.S).Level(0, 1, li)
			} else {
				row[li] = parquet.NullValue().Level(0, 0, li)
			}
		}
		rows = append(rows, row)
		if len(rows) == batch {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("write parquet rows: %w", err)
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
