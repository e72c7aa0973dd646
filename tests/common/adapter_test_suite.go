package common

import (
	"context"
	"testing"
	"time"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/coursework"
	"github.com/ideamans/go-sheettable/roster"
)

// AdapterTestCase represents a test case for an adapter
type AdapterTestCase struct {
	Name        string
	Adapter     sheettable.Adapter
	Description string
}

// Schema returns every table labbot keeps in one spreadsheet.
func Schema() sheettable.Schema {
	return sheettable.Merge(roster.Tables(), coursework.Tables())
}

// CreateTestStore creates a fresh spreadsheet on adapter and returns a store on it
func CreateTestStore(t *testing.T, adapter sheettable.Adapter) *sheettable.Store {
	t.Helper()

	store, err := sheettable.New(adapter, "", Schema(), &sheettable.Config{
		MaxRetries:    3,
		RetryInterval: 500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	title := "labbot-integration-" + time.Now().UTC().Format("20060102-150405")
	if _, err := store.CreateSpreadsheet(context.Background(), title, 200, 10); err != nil {
		t.Fatalf("Failed to create spreadsheet: %v", err)
	}
	return store
}

// ReopenStore returns a second store on the same spreadsheet, as a restarted process would see it
func ReopenStore(t *testing.T, adapter sheettable.Adapter, store *sheettable.Store) *sheettable.Store {
	t.Helper()

	reopened, err := sheettable.New(adapter, store.SpreadsheetID(), Schema(), nil)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	return reopened
}
