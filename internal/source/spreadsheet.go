package source

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/scuolestats/internal/frame"
)

// ReadSpreadsheet reads one sheet of an .xlsx workbook into a frame. The first
// row is the header. Cells are read as raw values, ignoring number formats,
// so "2,617,175" comes back as "2617175"; codes stored as text keep their
// leading zeros. An empty sheet name selects the first sheet.
func ReadSpreadsheet(path, sheet string) (*frame.Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer wb.Close()

	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q of %s is empty", sheet, path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if dup, ok := duplicate(header); ok {
		return nil, fmt.Errorf("sheet %q of %s: duplicate column %q", sheet, path, dup)
	}
	out := frame.New(header...)
	for n, cells := range rows[1:] {
		if len(cells) > len(header) {
			return nil, fmt.Errorf("sheet %q of %s row %d: %d cells, header has %d", sheet, path, n+2, len(cells), len(header))
		}
		row := make([]frame.Value, len(header))
		empty := true
		for i, c := range cells {
			if c != "" {
				row[i] = frame.V(c)
				empty = false
			}
		}
		if empty {
			continue
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
