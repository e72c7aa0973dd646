package sheettable_test

import (
	"reflect"
	"testing"

	"github.com/ideamans/go-sheettable"
)

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{4, "D"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		if got := sheettable.ColumnName(tt.col); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
		r, err := sheettable.ParseRange("Students!" + tt.want + "2")
		if err != nil || r.StartCol != tt.col {
			t.Errorf("ParseRange(Students!%s2) column = %d, %v, want %d", tt.want, r.StartCol, err, tt.col)
		}
	}

	if _, err := sheettable.ParseRange("Students!1A"); err == nil {
		t.Error("ParseRange(Students!1A) should fail")
	}
}

func TestGridRange_String(t *testing.T) {
	tests := []struct {
		name string
		r    sheettable.GridRange
		want string
	}{
		{
			name: "key column scan",
			r:    sheettable.GridRange{Sheet: "Students", StartCol: 1, StartRow: 2, EndCol: 1},
			want: "Students!A2:A",
		},
		{
			name: "single row",
			r:    sheettable.RowRange("Students", 5, 4),
			want: "Students!A5:D5",
		},
		{
			name: "title with space",
			r:    sheettable.RowRange("Lab works", 1, 3),
			want: "'Lab works'!A1:C1",
		},
		{
			name: "title with quote",
			r:    sheettable.RowRange("O'Brien", 1, 1),
			want: "'O''Brien'!A1:A1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.String()
			if got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
			parsed, err := sheettable.ParseRange(got)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", got, err)
			}
			if parsed != tt.r {
				t.Errorf("ParseRange(%q) = %+v, want %+v", got, parsed, tt.r)
			}
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, s := range []string{"A1:B2", "'Open!A1", "Sheet!1A", "Sheet!A0"} {
		if _, err := sheettable.ParseRange(s); err == nil {
			t.Errorf("ParseRange(%q) should fail", s)
		}
	}
}

func TestClip(t *testing.T) {
	grid := [][]string{
		{"username", "fullName"},
		{"alice", "Alice"},
		{"", ""},
		{"bob"},
		{"", ""},
	}

	tests := []struct {
		name string
		r    sheettable.GridRange
		want [][]string
	}{
		{
			name: "open-ended trims trailing blank rows",
			r:    sheettable.GridRange{Sheet: "S", StartCol: 1, StartRow: 2, EndCol: 2},
			want: [][]string{{"alice", "Alice"}, {}, {"bob"}},
		},
		{
			name: "bounded",
			r:    sheettable.GridRange{Sheet: "S", StartCol: 2, StartRow: 1, EndCol: 2, EndRow: 2},
			want: [][]string{{"fullName"}, {"Alice"}},
		},
		{
			name: "past the end",
			r:    sheettable.GridRange{Sheet: "S", StartCol: 1, StartRow: 9, EndCol: 1},
			want: [][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sheettable.Clip(grid, tt.r); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clip() = %q, want %q", got, tt.want)
			}
		})
	}
}
