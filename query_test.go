package sheettable_test

import (
	"context"
	"testing"

	"github.com/ideamans/go-sheettable"
)

func TestRow_Matches(t *testing.T) {
	row := sheettable.Row{
		Number: 2,
		Key:    "alice",
		Values: map[string]string{
			"username":     "alice",
			"group":        "G1",
			"subgroup":     "10",
			"submitted_at": "2026-03-01T10:00:00Z",
		},
	}

	tests := []struct {
		name  string
		query sheettable.Query
		want  bool
	}{
		{
			name:  "single == condition match",
			query: sheettable.Where("group", "==", "G1"),
			want:  true,
		},
		{
			name:  "single == condition no match",
			query: sheettable.Where("group", "==", "G2"),
			want:  false,
		},
		{
			name:  "!= condition",
			query: sheettable.Where("group", "!=", "G2"),
			want:  true,
		},
		{
			name:  "> compares numbers numerically",
			query: sheettable.Where("subgroup", ">", "9"),
			want:  true,
		},
		{
			name:  "== is exact text equality",
			query: sheettable.Where("subgroup", "==", "10.0"),
			want:  false,
		},
		{
			name:  "in is exact text equality",
			query: sheettable.Where("subgroup", "in", "010", "10"),
			want:  true,
		},
		{
			name:  "!= keeps numerically equal codes apart",
			query: sheettable.Where("subgroup", "!=", "010"),
			want:  true,
		},
		{
			name:  "between is inclusive numerically",
			query: sheettable.Where("subgroup", "between", "10.0", "10"),
			want:  true,
		},
		{
			name:  "between timestamps",
			query: sheettable.Where("submitted_at", "between", "2026-03-01T00:00:00Z", "2026-03-02T00:00:00Z"),
			want:  true,
		},
		{
			name:  "< timestamp",
			query: sheettable.Where("submitted_at", "<", "2026-02-01T00:00:00Z"),
			want:  false,
		},
		{
			name:  "in list",
			query: sheettable.Where("group", "in", "G3", "G1"),
			want:  true,
		},
		{
			name:  "prefix",
			query: sheettable.Where("username", "prefix", "al"),
			want:  true,
		},
		{
			name:  "missing column is empty",
			query: sheettable.Where("missing", "==", ""),
			want:  true,
		},
		{
			name: "multiple conditions are ANDed",
			query: sheettable.Query{Conditions: []sheettable.Condition{
				{Column: "group", Operator: "==", Values: []string{"G1"}},
				{Column: "subgroup", Operator: "<=", Values: []string{"5"}},
			}},
			want: false,
		},
		{
			name:  "no conditions",
			query: sheettable.Query{},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := row.Matches(tt.query); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyQuery(t *testing.T) {
	rows := make([]sheettable.Row, 0, 5)
	for i, g := range []string{"G1", "G2", "G1", "G1", "G2"} {
		rows = append(rows, sheettable.Row{Number: i + 2, Values: map[string]string{"group": g}})
	}

	tests := []struct {
		name  string
		query sheettable.Query
		want  []int
	}{
		{name: "filter", query: sheettable.Where("group", "==", "G1"), want: []int{2, 4, 5}},
		{name: "limit", query: sheettable.Query{Limit: 2}, want: []int{2, 3}},
		{name: "offset", query: sheettable.Query{Offset: 3}, want: []int{5, 6}},
		{name: "offset past end", query: sheettable.Query{Offset: 10}, want: []int{}},
		{
			name:  "filter with offset and limit",
			query: sheettable.Query{Conditions: sheettable.Where("group", "==", "G1").Conditions, Offset: 1, Limit: 1},
			want:  []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sheettable.ApplyQuery(rows, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("ApplyQuery() returned %d rows, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Number != tt.want[i] {
					t.Errorf("row %d = %d, want %d", i, r.Number, tt.want[i])
				}
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   sheettable.Query
		wantErr bool
	}{
		{name: "valid", query: sheettable.Where("group", "==", "G1")},
		{name: "unknown operator", query: sheettable.Where("group", "like", "G"), wantErr: true},
		{name: "empty column", query: sheettable.Where("", "==", "G"), wantErr: true},
		{name: "== without value", query: sheettable.Where("group", "=="), wantErr: true},
		{name: "between with one value", query: sheettable.Where("group", "between", "a"), wantErr: true},
		{name: "empty in", query: sheettable.Where("group", "in"), wantErr: true},
		{name: "negative limit", query: sheettable.Query{Limit: -1}, wantErr: true},
		{name: "negative offset", query: sheettable.Query{Offset: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sheettable.ValidateQuery(tt.query); (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, nil)

	for _, s := range [][]string{
		{"alice", "Alice", "G1", "1"},
		{"bob", "Bob", "G2", "1"},
		{"carol", "Carol", "G1", "2"},
	} {
		if _, err := store.AddRow(ctx, "Students", s); err != nil {
			t.Fatalf("AddRow() error = %v", err)
		}
	}

	rows, err := store.Query(ctx, "Students", sheettable.Where("group", "==", "G1"))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 2 || rows[0].Key != "alice" || rows[1].Key != "carol" {
		t.Errorf("Query() = %+v", rows)
	}

	if _, err := store.Query(ctx, "Students", sheettable.Where("email", "==", "x")); err == nil {
		t.Error("Query() on unknown column should fail")
	}
}
