// mkfixture copies the first rows of every extract in a data directory into a
// small fixture directory. Delimited files are copied byte for byte so their
// encoding survives; workbooks are resampled sheet by sheet.
// Usage: go run ./cmd/mkfixture --in data --out testdata/sample --rows 50
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/scuolestats/internal/model"
)

func main() {
	in := flag.String("in", "data", "input data directory")
	out := flag.String("out", "testdata/sample", "output fixture directory")
	maxRows := flag.Int("rows", 50, "data rows to keep per file")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	entries, err := os.ReadDir(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input dir: %v\n", err)
		os.Exit(1)
	}

	var copied, skipped int
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		src := filepath.Join(*in, name)
		dst := filepath.Join(*out, name)

		switch {
		case strings.EqualFold(filepath.Ext(name), ".xlsx"):
			n, err := sampleWorkbook(src, dst, *maxRows)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			fmt.Printf("  %-50s %6d rows (workbook)\n", name, n)
		case category(name) != "":
			n, err := sampleLines(src, dst, *maxRows)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			fmt.Printf("  %-50s %6d rows (%s)\n", name, n, category(name))
		default:
			skipped++
			continue
		}
		copied++
	}
	fmt.Printf("Wrote %d files to %s (%d skipped)\n", copied, *out, skipped)
}

// category returns the name of the first category whose marker appears in
// name.
func category(name string) string {
	for _, c := range model.AllCategories {
		if strings.Contains(name, c.Substring) {
			return c.Name
		}
	}
	return ""
}

// sampleLines copies the header and up to n data lines of src.
func sampleLines(src, dst string, n int) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	rows := -1 // header
	for rows < n {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return 0, werr
			}
			rows++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if rows < 0 {
		rows = 0
	}
	return rows, w.Flush()
}

// sampleWorkbook writes the first n data rows of every sheet of src to dst.
func sampleWorkbook(src, dst string, n int) (int, error) {
	in, err := excelize.OpenFile(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out := excelize.NewFile()
	defer out.Close()

	total := 0
	for i, sheet := range in.GetSheetList() {
		rows, err := in.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return 0, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) > n+1 {
			rows = rows[:n+1]
		}
		if i == 0 {
			if err := out.SetSheetName(out.GetSheetName(0), sheet); err != nil {
				return 0, err
			}
		} else if _, err := out.NewSheet(sheet); err != nil {
			return 0, err
		}
		for r, row := range rows {
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return 0, err
			}
			if err := out.SetSheetRow(sheet, cell, &cells); err != nil {
				return 0, err
			}
		}
		if len(rows) > 0 {
			total += len(rows) - 1
		}
	}
	return total, out.SaveAs(dst)
}
