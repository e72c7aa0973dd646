// Package coursework keeps the latest submitted link of every student in a
// Works table.
package coursework

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/dialogue"
	"go.uber.org/zap"
)

// WorksTable is the table title.
const WorksTable = "Works"

var columns = []string{"username", "link", "submitted_at"}

// Tables returns the Works table definition.
func Tables() sheettable.Schema {
	return sheettable.Schema{{Title: WorksTable, Columns: append([]string(nil), columns...)}}
}

// Work is a stored submission.
type Work struct {
	Username    string    `json:"username"`
	Link        string    `json:"link"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func workFrom(v map[string]string) Work {
	row := sheettable.Row{Values: v}
	return Work{
		Username:    v["username"],
		Link:        v["link"],
		SubmittedAt: row.GetAsTime("submitted_at", time.Time{}),
	}
}

// Book records submissions into the Works table of a store.
type Book struct {
	store  *sheettable.Store
	logger *zap.Logger
}

// New creates a Book. The store's schema must include Tables().
func New(store *sheettable.Store, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{store: store, logger: logger.Named("coursework")}
}

// Record implements dialogue.Sink. A later submission of the same user
// replaces the earlier one. Users without a username are stored by user id.
func (b *Book) Record(ctx context.Context, s dialogue.Submission) error {
	username := s.Username
	if username == "" {
		username = strconv.FormatInt(s.UserID, 10)
	}
	if s.Link == "" {
		return fmt.Errorf("%w: empty link", sheettable.ErrInvalidRow)
	}

	row, err := b.store.AddRow(ctx, WorksTable, []string{username, s.Link, s.SubmittedAt.UTC().Format(time.RFC3339)})
	if err != nil {
		return fmt.Errorf("record work of %s: %w", username, err)
	}
	b.logger.Debug("work recorded", zap.String("username", username), zap.Int("row", row), zap.String("dialogue_id", s.DialogueID))
	return nil
}

// Get returns the latest work of a user.
func (b *Book) Get(ctx context.Context, username string) (Work, bool, error) {
	v, err := b.store.GetRowByKey(ctx, WorksTable, username)
	if err != nil || len(v) == 0 {
		return Work{}, false, err
	}
	return workFrom(v), true, nil
}

// List returns every stored work in sheet order.
func (b *Book) List(ctx context.Context) ([]Work, error) {
	return b.query(ctx, sheettable.Query{})
}

// Since returns the works submitted at or after t.
func (b *Book) Since(ctx context.Context, t time.Time) ([]Work, error) {
	return b.query(ctx, sheettable.Where("submitted_at", ">=", t.UTC().Format(time.RFC3339)))
}

func (b *Book) query(ctx context.Context, q sheettable.Query) ([]Work, error) {
	rows, err := b.store.Query(ctx, WorksTable, q)
	if err != nil {
		return nil, err
	}
	works := make([]Work, len(rows))
	for i, r := range rows {
		works[i] = workFrom(r.Values)
	}
	return works, nil
}

var _ dialogue.Sink = (*Book)(nil)
