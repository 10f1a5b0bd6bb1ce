package spreadsheet

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one non-empty worksheet row. Cells are keyed by upper-case column
// letter and hold the formatted cell text.
type Row struct {
	Line  int               `json:"line"`
	Cells map[string]string `json:"cells"`
}

// Sheet is the indexed content of an uploaded workbook.
type Sheet struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Parse reads the active worksheet of an .xlsx workbook. Rows without any
// non-empty cell are dropped; the remaining rows keep their 1-based row
// number.
func Parse(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", name, err)
	}

	sheet := &Sheet{Name: name}
	for i, cols := range rows {
		cells := make(map[string]string)
		for j, v := range cols {
			if v == "" {
				continue
			}
			col, err := excelize.ColumnNumberToName(j + 1)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", j+1, err)
			}
			cells[col] = v
		}
		if len(cells) == 0 {
			continue
		}
		sheet.Rows = append(sheet.Rows, Row{Line: i + 1, Cells: cells})
	}
	return sheet, nil
}

// Len returns the number of indexed rows.
func (s *Sheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Sorted returns the rows in ascending line order.
func (s *Sheet) Sorted() []Row {
	rows := make([]Row, len(s.Rows))
	copy(rows, s.Rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Line < rows[j].Line })
	return rows
}

// Data returns the sorted rows, dropping the first one when skipHeader is
// set.
func (s *Sheet) Data(skipHeader bool) []Row {
	rows := s.Sorted()
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows
}

// Row looks up a row by line number.
func (s *Sheet) Row(line int) (Row, bool) {
	for _, r := range s.Rows {
		if r.Line == line {
			return r, true
		}
	}
	return Row{}, false
}

var placeholderRE = regexp.MustCompile(`(?i)<([a-z]+)>`)

// Fill replaces every <COL> placeholder, matched case-insensitively, with
// the row's value for that column. Placeholders naming a column the row does
// not have are left untouched and reported in missing, upper-cased and
// without duplicates.
func Fill(text string, row Row) (filled string, missing []string) {
	seen := make(map[string]bool)
	filled = placeholderRE.ReplaceAllStringFunc(text, func(m string) string {
		col := strings.ToUpper(m[1 : len(m)-1])
		if v, ok := row.Cells[col]; ok {
			return v
		}
		if !seen[col] {
			seen[col] = true
			missing = append(missing, col)
		}
		return m
	})
	return filled, missing
}
