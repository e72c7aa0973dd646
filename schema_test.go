package sheettable_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ideamans/go-sheettable"
)

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		schema  sheettable.Schema
		wantErr bool
	}{
		{
			name: "valid",
			schema: sheettable.Schema{
				{Title: "Students", Columns: []string{"username", "fullName"}},
				{Title: "Teachers", Columns: []string{"username"}},
			},
		},
		{name: "empty", schema: nil, wantErr: true},
		{
			name:    "empty title",
			schema:  sheettable.Schema{{Title: "", Columns: []string{"a"}}},
			wantErr: true,
		},
		{
			name: "duplicate title",
			schema: sheettable.Schema{
				{Title: "T", Columns: []string{"a"}},
				{Title: "T", Columns: []string{"b"}},
			},
			wantErr: true,
		},
		{
			name:    "no columns",
			schema:  sheettable.Schema{{Title: "T"}},
			wantErr: true,
		},
		{
			name:    "duplicate column",
			schema:  sheettable.Schema{{Title: "T", Columns: []string{"a", "a"}}},
			wantErr: true,
		},
		{
			name:    "empty column",
			schema:  sheettable.Schema{{Title: "T", Columns: []string{"a", ""}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, sheettable.ErrInvalidSchema) {
				t.Errorf("Validate() error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a := sheettable.Schema{{Title: "Students", Columns: []string{"username"}}}
	b := sheettable.Schema{{Title: "Works", Columns: []string{"username", "link"}}}

	merged := sheettable.Merge(a, b)
	if got := merged.Titles(); !reflect.DeepEqual(got, []string{"Students", "Works"}) {
		t.Errorf("Titles() = %v", got)
	}
	if def, ok := merged.Table("Works"); !ok || len(def.Columns) != 2 {
		t.Errorf("Table(Works) = %+v, %v", def, ok)
	}
	if _, ok := merged.Table("Nope"); ok {
		t.Error("Table(Nope) should not be found")
	}
}
