package sheettable_test

import (
	"testing"
	"time"

	"github.com/ideamans/go-sheettable"
)

func TestRow_GetAsTime(t *testing.T) {
	def := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{name: "RFC3339", value: "2026-02-03T04:05:06Z", want: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)},
		{name: "datetime", value: "2026-02-03 04:05:06", want: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)},
		{name: "date", value: "2026-02-03", want: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "yesterday", want: def},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := sheettable.Row{Values: map[string]string{"at": tt.value}}
			if got := row.GetAsTime("at", def); !got.Equal(tt.want) {
				t.Errorf("GetAsTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
