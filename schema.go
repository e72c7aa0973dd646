package sheettable

import "fmt"

// TableDef declares one table: a sheet title and its ordered column names.
// Column 0 is the key column. Column order is positional and must not change
// once the table holds data.
type TableDef struct {
	Title   string
	Columns []string
}

// Schema is the ordered list of tables backed by one spreadsheet.
// Tables are created in the order they are declared.
type Schema []TableDef

// Validate checks titles and column names for emptiness and duplicates.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no tables declared", ErrInvalidSchema)
	}

	titles := make(map[string]bool, len(s))
	for _, t := range s {
		if t.Title == "" {
			return fmt.Errorf("%w: empty table title", ErrInvalidSchema)
		}
		if titles[t.Title] {
			return fmt.Errorf("%w: duplicate table %q", ErrInvalidSchema, t.Title)
		}
		titles[t.Title] = true

		if len(t.Columns) == 0 {
			return fmt.Errorf("%w: table %q has no columns", ErrInvalidSchema, t.Title)
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c == "" {
				return fmt.Errorf("%w: table %q has an empty column name", ErrInvalidSchema, t.Title)
			}
			if cols[c] {
				return fmt.Errorf("%w: table %q declares column %q twice", ErrInvalidSchema, t.Title, c)
			}
			cols[c] = true
		}
	}
	return nil
}

// Table returns the definition with the given title.
func (s Schema) Table(title string) (TableDef, bool) {
	for _, t := range s {
		if t.Title == title {
			return t, true
		}
	}
	return TableDef{}, false
}

// Titles returns the table titles in declaration order.
func (s Schema) Titles() []string {
	titles := make([]string, len(s))
	for i, t := range s {
		titles[i] = t.Title
	}
	return titles
}

// Merge concatenates schemas, keeping declaration order.
func Merge(schemas ...Schema) Schema {
	var merged Schema
	for _, s := range schemas {
		merged = append(merged, s...)
	}
	return merged
}

// header returns the header row range and values for a table.
func (t TableDef) header() ValueRange {
	values := make([]string, len(t.Columns))
	copy(values, t.Columns)
	return ValueRange{
		Range:  RowRange(t.Title, 1, len(t.Columns)),
		Values: [][]string{values},
	}
}
