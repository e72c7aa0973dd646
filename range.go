package sheettable

import (
	"fmt"
	"strconv"
	"strings"
)

// GridRange is a rectangular block of cells on one sheet.
// Rows and columns are 1-based. An EndRow of 0 means the range is open
// towards the bottom of the sheet (A2:A). An EndCol of 0 means the range
// ends at StartCol.
type GridRange struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// Cols returns the number of columns covered by the range.
func (r GridRange) Cols() int {
	if r.EndCol < r.StartCol {
		return 1
	}
	return r.EndCol - r.StartCol + 1
}

// Bounded reports whether the range has a fixed last row.
func (r GridRange) Bounded() bool {
	return r.EndRow > 0
}

// String renders the range in A1 notation, e.g. Students!A2:D or 'My Sheet'!A1:B1.
func (r GridRange) String() string {
	endCol := r.EndCol
	if endCol < r.StartCol {
		endCol = r.StartCol
	}

	start := ColumnName(r.StartCol) + strconv.Itoa(r.StartRow)
	end := ColumnName(endCol)
	if r.EndRow > 0 {
		end += strconv.Itoa(r.EndRow)
	}
	return QuoteSheetTitle(r.Sheet) + "!" + start + ":" + end
}

// RowRange returns the range covering columns 1..cols of a single row.
func RowRange(sheet string, row, cols int) GridRange {
	return GridRange{Sheet: sheet, StartCol: 1, StartRow: row, EndCol: cols, EndRow: row}
}

// ColumnName converts a column number to its letter form (1 -> A, 26 -> Z, 27 -> AA).
func ColumnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// columnNumber converts a column letter form back to its number (A -> 1, AA -> 27).
func columnNumber(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for _, c := range strings.ToUpper(name) {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		n = n*26 + int(c-'A'+1)
	}
	return n, nil
}

// QuoteSheetTitle quotes a sheet title for use in A1 notation when it
// contains anything other than ASCII letters, digits and underscores.
func QuoteSheetTitle(title string) string {
	plain := title != ""
	for _, c := range title {
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			plain = false
			break
		}
	}
	if plain {
		return title
	}
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// ParseRange parses A1 notation produced by GridRange.String.
func ParseRange(s string) (GridRange, error) {
	bang := strings.LastIndex(s, "!")
	if bang <= 0 {
		return GridRange{}, fmt.Errorf("range %q: missing sheet title", s)
	}

	title := s[:bang]
	if strings.HasPrefix(title, "'") {
		if len(title) < 2 || !strings.HasSuffix(title, "'") {
			return GridRange{}, fmt.Errorf("range %q: unterminated sheet title", s)
		}
		title = strings.ReplaceAll(title[1:len(title)-1], "''", "'")
	}

	cells := s[bang+1:]
	from, to, found := strings.Cut(cells, ":")
	if !found {
		to = from
	}

	r := GridRange{Sheet: title}
	var err error
	if r.StartCol, r.StartRow, err = parseCell(from); err != nil {
		return GridRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	if r.StartRow == 0 {
		r.StartRow = 1
	}
	if r.EndCol, r.EndRow, err = parseCell(to); err != nil {
		return GridRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	return r, nil
}

// parseCell splits "AB12" into (28, 12). A missing row yields 0.
func parseCell(cell string) (int, int, error) {
	i := 0
	for i < len(cell) && ((cell[i] >= 'A' && cell[i] <= 'Z') || (cell[i] >= 'a' && cell[i] <= 'z')) {
		i++
	}
	col, err := columnNumber(cell[:i])
	if err != nil {
		return 0, 0, err
	}
	if i == len(cell) {
		return col, 0, nil
	}
	row, err := strconv.Atoi(cell[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid row in cell %q", cell)
	}
	return col, row, nil
}

// Clip extracts the cells covered by r from a full sheet grid (row 1 at
// index 0). Like the Sheets API, trailing empty cells of each row and
// trailing empty rows are dropped.
func Clip(grid [][]string, r GridRange) [][]string {
	lastRow := len(grid)
	if r.Bounded() && r.EndRow < lastRow {
		lastRow = r.EndRow
	}
	endCol := r.StartCol + r.Cols() - 1

	values := [][]string{}
	for row := r.StartRow; row <= lastRow; row++ {
		src := grid[row-1]
		cells := []string{}
		for col := r.StartCol; col <= endCol && col <= len(src); col++ {
			cells = append(cells, src[col-1])
		}
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		values = append(values, cells)
	}
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	return values
}
