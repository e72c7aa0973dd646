package metrics

import (
	"context"
	"time"

	sheettable "github.com/ideamans/go-sheettable"
)

// Adapter operation labels.
const (
	OpCreateSpreadsheet = "createSpreadsheet"
	OpAddSheet          = "addSheet"
	OpBatchUpdate       = "batchUpdate"
	OpBatchGet          = "batchGet"
	OpGrantPublicRead   = "grantPublicRead"
)

// Adapter records a call count and latency for every call forwarded to next.
type Adapter struct {
	next sheettable.Adapter
	m    *Metrics
}

var _ sheettable.Adapter = (*Adapter)(nil)

// Instrument wraps next.
func Instrument(next sheettable.Adapter, m *Metrics) *Adapter {
	return &Adapter{next: next, m: m}
}

func (a *Adapter) observe(op string, start time.Time, err error) {
	a.m.AdapterDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	a.m.AdapterCalls.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case sheettable.IsRetryable(err):
		return ResultRetryable
	default:
		return ResultError
	}
}

// CreateSpreadsheet forwards to the wrapped adapter.
func (a *Adapter) CreateSpreadsheet(ctx context.Context, props sheettable.SpreadsheetProperties, first sheettable.SheetProperties) (id string, err error) {
	defer func(start time.Time) { a.observe(OpCreateSpreadsheet, start, err) }(time.Now())
	return a.next.CreateSpreadsheet(ctx, props, first)
}

// AddSheet forwards to the wrapped adapter.
func (a *Adapter) AddSheet(ctx context.Context, spreadsheetID string, sheet sheettable.SheetProperties) (err error) {
	defer func(start time.Time) { a.observe(OpAddSheet, start, err) }(time.Now())
	return a.next.AddSheet(ctx, spreadsheetID, sheet)
}

// BatchUpdate forwards to the wrapped adapter.
func (a *Adapter) BatchUpdate(ctx context.Context, spreadsheetID string, data []sheettable.ValueRange) (err error) {
	defer func(start time.Time) { a.observe(OpBatchUpdate, start, err) }(time.Now())
	return a.next.BatchUpdate(ctx, spreadsheetID, data)
}

// BatchGet forwards to the wrapped adapter.
func (a *Adapter) BatchGet(ctx context.Context, spreadsheetID string, ranges []sheettable.GridRange) (out []sheettable.ValueRange, err error) {
	defer func(start time.Time) { a.observe(OpBatchGet, start, err) }(time.Now())
	return a.next.BatchGet(ctx, spreadsheetID, ranges)
}

// GrantPublicRead forwards to the wrapped adapter.
func (a *Adapter) GrantPublicRead(ctx context.Context, spreadsheetID string) (err error) {
	defer func(start time.Time) { a.observe(OpGrantPublicRead, start, err) }(time.Now())
	return a.next.GrantPublicRead(ctx, spreadsheetID)
}

// SpreadsheetURL returns the wrapped adapter's link for id, or id itself when
// the adapter has no links. It makes no backend call and is not observed.
func (a *Adapter) SpreadsheetURL(id string) string {
	if u, ok := a.next.(interface{ SpreadsheetURL(id string) string }); ok {
		return u.SpreadsheetURL(id)
	}
	return id
}
