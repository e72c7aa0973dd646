package main

import (
	"context"
	"fmt"
	"log"
	"time"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
	"github.com/ideamans/go-sheettable/coursework"
	"github.com/ideamans/go-sheettable/dialogue"
	"github.com/ideamans/go-sheettable/roster"
)

// consoleSender prints the bot's replies instead of sending them.
type consoleSender struct{}

func (consoleSender) Send(_ context.Context, chatID int64, text string) error {
	fmt.Printf("  bot -> %d: %s\n", chatID, text)
	return nil
}

func main() {
	// Excel adapter configuration (no authentication required)
	adapter, err := excel.New(&excel.Config{Dir: "./example_data"})
	if err != nil {
		log.Fatalf("Failed to create Excel adapter: %v", err)
	}

	schema := sheettable.Merge(roster.Tables(), coursework.Tables())
	store, err := sheettable.New(adapter, "", schema, excel.DefaultStoreConfig())
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	r := roster.New(store)
	id, err := r.CreateSpreadsheet(ctx, "Example Roster", 0, 0)
	if err != nil {
		log.Fatalf("Failed to create workbook: %v", err)
	}
	fmt.Printf("Workbook: %s\n", store.URL())

	// 1. Fill the roster
	fmt.Println("\nAdding students...")
	for _, s := range []roster.Student{
		{Username: "alice", FullName: "Alice Johnson", Group: "IU7-61", Subgroup: "1"},
		{Username: "bob", FullName: "Bob Smith", Group: "IU7-61", Subgroup: "2"},
		{Username: "charlie", FullName: "Charlie Brown", Group: "IU7-62", Subgroup: "1"},
	} {
		if err := r.AddStudent(ctx, s); err != nil {
			log.Printf("Failed to add student: %v", err)
			continue
		}
		fmt.Printf("Added student: %s\n", s.FullName)
	}

	// 2. Play a submission dialogue
	fmt.Println("\nDialogue with alice...")
	book := coursework.New(store, nil)
	machine, err := dialogue.NewMachine(consoleSender{}, book, dialogue.Options{})
	if err != nil {
		log.Fatalf("Failed to create dialogue machine: %v", err)
	}
	for _, text := range []string{"/lab", "my homework", "https://github.com/alice/lab1"} {
		fmt.Printf("  alice: %s\n", text)
		if err := machine.Handle(ctx, dialogue.Message{ChatID: 100, UserID: 1, Username: "alice", Text: text}); err != nil {
			log.Printf("Failed to handle message: %v", err)
		}
	}

	// 3. Read the submissions back
	works, err := book.Since(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		log.Fatalf("Failed to list works: %v", err)
	}
	fmt.Printf("\nWorks submitted in the last hour: %d\n", len(works))
	for _, w := range works {
		fmt.Printf("  %s: %s at %s\n", w.Username, w.Link, w.SubmittedAt.Format(time.RFC3339))
	}

	// 4. Reopen the workbook as a restarted bot would
	reopened, err := sheettable.New(adapter, id, schema, excel.DefaultStoreConfig())
	if err != nil {
		log.Fatalf("Failed to reopen: %v", err)
	}
	names, err := roster.New(reopened).StudentUsernames(ctx)
	if err != nil {
		log.Fatalf("Failed to list students: %v", err)
	}
	fmt.Printf("\nStudents in %s: %v\n", id, names)
}
