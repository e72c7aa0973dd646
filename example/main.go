package main

import (
	"context"
	"fmt"
	"log"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/googlesheets"
	"github.com/ideamans/go-sheettable/roster"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Stay under the per-user Sheets quota
	adapterConfig := googlesheets.Config{
		RequestsPerMinute: 60,
	}

	// Initialize Google Sheets adapter with JSON key file
	adapter, err := googlesheets.NewWithJSONKeyFile(ctx, adapterConfig, "./service-account.json")
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}

	// Create store using recommended defaults for Google Sheets.
	// Pass an existing spreadsheet ID instead of "" to reuse one.
	store, err := sheettable.New(adapter, "", roster.Tables(), googlesheets.DefaultStoreConfig())
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	r := roster.New(store)
	id, err := r.CreateSpreadsheet(ctx, roster.DefaultTitle, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	fmt.Printf("Created spreadsheet %s\n%s\n", id, store.URL())

	// Add students and a teacher
	students := []roster.Student{
		{Username: "alice", FullName: "Alice Liddell", Group: "IU7-61", Subgroup: "1"},
		{Username: "bob", FullName: "Bob Marley", Group: "IU7-61", Subgroup: "2"},
		{Username: "carol", FullName: "Carol Danvers", Group: "IU7-62", Subgroup: "1"},
	}
	for _, s := range students {
		if err := r.AddStudent(ctx, s); err != nil {
			return fmt.Errorf("failed to add %s: %w", s.Username, err)
		}
	}
	if err := r.AddTeacher(ctx, roster.Teacher{Username: "tom", FullName: "Tom Riddle"}); err != nil {
		return fmt.Errorf("failed to add teacher: %w", err)
	}

	// Query one group
	group, err := r.StudentsInGroup(ctx, "IU7-61", "")
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}
	fmt.Printf("Found %d students in IU7-61:\n", len(group))
	for _, s := range group {
		fmt.Printf("  %s (%s), subgroup %s\n", s.FullName, s.Username, s.Subgroup)
	}

	// Remove a student; the row is cleared and reused by the next add
	if err := r.RemoveStudent(ctx, "bob"); err != nil {
		return fmt.Errorf("failed to remove: %w", err)
	}
	names, err := r.StudentUsernames(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Username column after removal: %q\n", names)

	return nil
}
