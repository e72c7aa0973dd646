package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ideamans/go-sheettable"
	"github.com/xuri/excelize/v2"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  &Config{Dir: "testdata"},
			wantErr: false,
		},
		{
			name:    "missing dir",
			config:  &Config{},
			wantErr: true,
		},
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func newTestAdapter(t *testing.T) (*Adapter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "books")
	adapter, err := New(&Config{Dir: dir})
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	return adapter, dir
}

func TestAdapter_CreateSpreadsheet(t *testing.T) {
	adapter, dir := newTestAdapter(t)
	ctx := context.Background()

	props := sheettable.SpreadsheetProperties{Title: "Lab Roster", Locale: "en_US"}
	id, err := adapter.CreateSpreadsheet(ctx, props, sheettable.SheetProperties{Title: "Students"})
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}
	if id != "Lab-Roster.xlsx" {
		t.Errorf("id = %q, want Lab-Roster.xlsx", id)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, id))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Students"}) {
		t.Errorf("sheets = %v, want [Students]", got)
	}
	docProps, err := f.GetDocProps()
	if err != nil {
		t.Fatalf("GetDocProps() error = %v", err)
	}
	if docProps.Title != "Lab Roster" {
		t.Errorf("doc title = %q", docProps.Title)
	}

	// Same title again gets a suffixed file instead of overwriting.
	id2, err := adapter.CreateSpreadsheet(ctx, props, sheettable.SheetProperties{Title: "Students"})
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}
	if id2 != "Lab-Roster-2.xlsx" {
		t.Errorf("second id = %q, want Lab-Roster-2.xlsx", id2)
	}
}

func TestAdapter_AddSheet(t *testing.T) {
	adapter, dir := newTestAdapter(t)
	ctx := context.Background()

	id, err := adapter.CreateSpreadsheet(ctx, sheettable.SpreadsheetProperties{Title: "book"}, sheettable.SheetProperties{Title: "Students"})
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}
	if err := adapter.AddSheet(ctx, id, sheettable.SheetProperties{Title: "Teachers"}); err != nil {
		t.Fatalf("AddSheet() error = %v", err)
	}
	if err := adapter.AddSheet(ctx, id, sheettable.SheetProperties{Title: "Teachers"}); err == nil {
		t.Error("AddSheet() with duplicate title should fail")
	}

	f, err := excelize.OpenFile(filepath.Join(dir, id))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Students", "Teachers"}) {
		t.Errorf("sheets = %v", got)
	}
}

func TestAdapter_UpdateGet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	id, err := adapter.CreateSpreadsheet(ctx, sheettable.SpreadsheetProperties{Title: "book"}, sheettable.SheetProperties{Title: "Students"})
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}

	data := []sheettable.ValueRange{
		{Range: sheettable.RowRange("Students", 1, 4), Values: [][]string{{"username", "fullName", "group", "subgroup"}}},
		{Range: sheettable.RowRange("Students", 2, 4), Values: [][]string{{"alice", "Alice A", "G1", "1"}}},
		{Range: sheettable.RowRange("Students", 4, 4), Values: [][]string{{"carol", "Carol C", "G2", ""}}},
	}
	if err := adapter.BatchUpdate(ctx, id, data); err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}

	tests := []struct {
		name string
		r    sheettable.GridRange
		want [][]string
	}{
		{
			name: "open-ended key column",
			r:    sheettable.GridRange{Sheet: "Students", StartCol: 1, StartRow: 2, EndCol: 1},
			want: [][]string{{"alice"}, {}, {"carol"}},
		},
		{
			name: "full rows",
			r:    sheettable.GridRange{Sheet: "Students", StartCol: 1, StartRow: 2, EndCol: 4},
			want: [][]string{{"alice", "Alice A", "G1", "1"}, {}, {"carol", "Carol C", "G2"}},
		},
		{
			name: "bounded header",
			r:    sheettable.RowRange("Students", 1, 2),
			want: [][]string{{"username", "fullName"}},
		},
		{
			name: "below data",
			r:    sheettable.GridRange{Sheet: "Students", StartCol: 1, StartRow: 10, EndCol: 4},
			want: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adapter.BatchGet(ctx, id, []sheettable.GridRange{tt.r})
			if err != nil {
				t.Fatalf("BatchGet() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("BatchGet() returned %d ranges", len(got))
			}
			if !reflect.DeepEqual(got[0].Values, tt.want) {
				t.Errorf("values = %q, want %q", got[0].Values, tt.want)
			}
		})
	}

	t.Run("blank row", func(t *testing.T) {
		clear := []sheettable.ValueRange{{Range: sheettable.RowRange("Students", 4, 4), Values: [][]string{{"", "", "", ""}}}}
		if err := adapter.BatchUpdate(ctx, id, clear); err != nil {
			t.Fatalf("BatchUpdate() error = %v", err)
		}
		got, err := adapter.BatchGet(ctx, id, []sheettable.GridRange{{Sheet: "Students", StartCol: 1, StartRow: 2, EndCol: 1}})
		if err != nil {
			t.Fatalf("BatchGet() error = %v", err)
		}
		if !reflect.DeepEqual(got[0].Values, [][]string{{"alice"}}) {
			t.Errorf("values = %q", got[0].Values)
		}
	})
}

func TestAdapter_Errors(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	id, err := adapter.CreateSpreadsheet(ctx, sheettable.SpreadsheetProperties{Title: "book"}, sheettable.SheetProperties{Title: "Students"})
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "unknown workbook",
			run: func() error {
				_, err := adapter.BatchGet(ctx, "missing.xlsx", []sheettable.GridRange{sheettable.RowRange("Students", 1, 1)})
				return err
			},
			want: ErrWorkbookNotFound,
		},
		{
			name: "path traversal",
			run: func() error {
				return adapter.GrantPublicRead(ctx, "../book.xlsx")
			},
			want: ErrInvalidID,
		},
		{
			name: "unknown sheet",
			run: func() error {
				return adapter.BatchUpdate(ctx, id, []sheettable.ValueRange{{Range: sheettable.RowRange("Nope", 1, 1), Values: [][]string{{"x"}}}})
			},
			want: ErrSheetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if sheettable.IsRetryable(err) {
				t.Error("local workbook errors should not be retryable")
			}
		})
	}
}

func TestAdapter_GrantPublicRead(t *testing.T) {
	adapter, dir := newTestAdapter(t)
	ctx := context.Background()

	id, err := adapter.CreateSpreadsheet(ctx, sheettable.SpreadsheetProperties{Title: "book"}, sheettable.SheetProperties{Title: "Students"})
	if err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}
	path := filepath.Join(dir, id)
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	if err := adapter.GrantPublicRead(ctx, id); err != nil {
		t.Fatalf("GrantPublicRead() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0004 == 0 {
		t.Errorf("mode = %v, want world-readable", info.Mode().Perm())
	}
}

func TestAdapter_WithStore(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	schema := sheettable.Schema{
		{Title: "Students", Columns: []string{"username", "fullName", "group", "subgroup"}},
		{Title: "Teachers", Columns: []string{"username", "fullName"}},
	}
	store, err := sheettable.New(adapter, "", schema, DefaultStoreConfig())
	if err != nil {
		t.Fatalf("sheettable.New() error = %v", err)
	}
	if _, err := store.CreateSpreadsheet(ctx, "roster", 0, 0); err != nil {
		t.Fatalf("CreateSpreadsheet() error = %v", err)
	}

	if _, err := store.AddRow(ctx, "Teachers", []string{"tom", "Tom T"}); err != nil {
		t.Fatalf("AddRow() error = %v", err)
	}
	got, err := store.GetRowByKey(ctx, "Teachers", "tom")
	if err != nil {
		t.Fatalf("GetRowByKey() error = %v", err)
	}
	want := map[string]string{"username": "tom", "fullName": "Tom T"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetRowByKey() = %v, want %v", got, want)
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Lab Roster", "Lab-Roster"},
		{"  spring/2026  ", "spring-2026"},
		{"../../etc", "etc"},
		{"???", "spreadsheet"},
		{"名簿", "名簿"},
	}
	for _, tt := range tests {
		if got := fileStem(tt.title); got != tt.want {
			t.Errorf("fileStem(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
