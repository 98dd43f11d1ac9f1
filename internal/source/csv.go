package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/gyeh/scuolestats/internal/frame"
)

// DefaultEncoding is the charset of the MIUR extracts.
const DefaultEncoding = "iso-8859-1"

// lookupEncoding resolves a charset name. ISO-8859-1 is mapped directly
// because the WHATWG index aliases it to windows-1252.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "utf-8", "utf8":
		return encoding.Nop, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return e, nil
}

// ReadCSV reads a comma-delimited file with a header row into a frame,
// decoding it from the given charset. Column names are trimmed, empty cells
// are null and short rows are padded with nulls.
func ReadCSV(path, charset string) (*frame.Frame, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, enc.NewDecoder()))
	r.Comma = ','
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if dup, ok := duplicate(header); ok {
		return nil, fmt.Errorf("read header %s: duplicate column %q", path, dup)
	}
	out := frame.New(header...)

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", path, line, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("read %s line %d: %d fields, header has %d", path, line, len(record), len(header))
		}
		row := make([]frame.Value, len(header))
		for i, cell := range record {
			if cell != "" {
				row[i] = frame.V(cell)
			}
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func duplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n, true
		}
		seen[n] = true
	}
	return "", false
}
