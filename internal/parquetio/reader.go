package parquetio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/scuolestats/internal/frame"
)

// ReadFile loads a Parquet file written by WriteFile back into a frame,
// restoring the original column order.
func ReadFile(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, fld := range fields {
		names[i] = fld.Name()
	}
	cols := names
	if meta, ok := pf.Lookup(columnsKey); ok {
		var order []string
		if err := json.Unmarshal([]byte(meta), &order); err == nil && len(order) == len(names) {
			cols = order
		}
	}
	out := frame.New(cols...)
	pos := make([]int, len(names))
	for i, n := range names {
		j, ok := out.ColumnIndex(n)
		if !ok {
			return nil, fmt.Errorf("parquet column %q missing from column order", n)
		}
		pos[i] = j
	}

	r := parquet.NewReader(pf)
	defer r.Close()

	buf := make([]parquet.Row, 256)
	for {
		n, err := r.ReadRows(buf)
		for _, row := range buf[:n] {
			vals := make([]frame.Value, len(cols))
			for _, v := range row {
				if !v.IsNull() {
					vals[pos[v.Column()]] = frame.V(string(v.ByteArray()))
				}
			}
			if err := out.Append(vals); err != nil {
				return nil, err
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return out, nil
}
