// Package memory provides an in-process sheettable.Adapter. It mimics the
// read semantics of Google Sheets (trailing empty cells and rows are trimmed)
// and supports fault injection, which makes it the adapter of choice in tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ideamans/go-sheettable"
)

// ErrSheetNotFound is returned for ranges on unknown sheets.
var ErrSheetNotFound = errors.New("sheet not found")

type sheet struct {
	props sheettable.SheetProperties
	cells [][]string
}

type spreadsheet struct {
	props  sheettable.SpreadsheetProperties
	sheets []*sheet
	public bool
}

// Adapter stores spreadsheets in memory.
type Adapter struct {
	mu           sync.Mutex
	spreadsheets map[string]*spreadsheet
	nextID       int
	faults       map[string][]error
	calls        map[string]int
}

// New creates an empty in-memory adapter.
func New() *Adapter {
	return &Adapter{
		spreadsheets: make(map[string]*spreadsheet),
		faults:       make(map[string][]error),
		calls:        make(map[string]int),
	}
}

// Operation names used by FailNext and Calls.
const (
	OpCreateSpreadsheet = "createSpreadsheet"
	OpAddSheet          = "addSheet"
	OpBatchUpdate       = "batchUpdate"
	OpBatchGet          = "batchGet"
	OpGrantPublicRead   = "grantPublicRead"
)

// FailNext queues err to be returned by the next call of op.
func (a *Adapter) FailNext(op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.faults[op] = append(a.faults[op], err)
}

// Calls returns how many times op has been invoked, failed calls included.
func (a *Adapter) Calls(op string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[op]
}

// Put creates the spreadsheet and sheet if needed and replaces the sheet contents.
func (a *Adapter) Put(spreadsheetID, title string, rows [][]string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.spreadsheets[spreadsheetID]
	if !ok {
		ss = &spreadsheet{props: sheettable.SpreadsheetProperties{Title: spreadsheetID}}
		a.spreadsheets[spreadsheetID] = ss
	}
	sh := ss.sheet(title)
	if sh == nil {
		sh = &sheet{props: sheettable.SheetProperties{Title: title, RowCount: 1000, ColumnCount: 26}}
		ss.sheets = append(ss.sheets, sh)
	}
	sh.cells = make([][]string, len(rows))
	for i, r := range rows {
		sh.cells[i] = append([]string(nil), r...)
	}
}

// Cells returns a copy of the raw cells of a sheet, nil if it does not exist.
func (a *Adapter) Cells(spreadsheetID, title string) [][]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.spreadsheets[spreadsheetID]
	if !ok {
		return nil
	}
	sh := ss.sheet(title)
	if sh == nil {
		return nil
	}
	out := make([][]string, len(sh.cells))
	for i, r := range sh.cells {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// SheetTitles returns sheet titles in creation order.
func (a *Adapter) SheetTitles(spreadsheetID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.spreadsheets[spreadsheetID]
	if !ok {
		return nil
	}
	titles := make([]string, len(ss.sheets))
	for i, sh := range ss.sheets {
		titles[i] = sh.props.Title
	}
	return titles
}

// Sheet returns the properties of a sheet.
func (a *Adapter) Sheet(spreadsheetID, title string) (sheettable.SheetProperties, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.spreadsheets[spreadsheetID]
	if !ok {
		return sheettable.SheetProperties{}, false
	}
	sh := ss.sheet(title)
	if sh == nil {
		return sheettable.SheetProperties{}, false
	}
	return sh.props, true
}

// Properties returns the spreadsheet properties given on creation.
func (a *Adapter) Properties(spreadsheetID string) (sheettable.SpreadsheetProperties, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.spreadsheets[spreadsheetID]
	if !ok {
		return sheettable.SpreadsheetProperties{}, false
	}
	return ss.props, true
}

// Public reports whether public read access was granted.
func (a *Adapter) Public(spreadsheetID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.spreadsheets[spreadsheetID]
	return ok && ss.public
}

// CreateSpreadsheet implements sheettable.Adapter.
func (a *Adapter) CreateSpreadsheet(ctx context.Context, props sheettable.SpreadsheetProperties, first sheettable.SheetProperties) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.begin(ctx, OpCreateSpreadsheet); err != nil {
		return "", err
	}

	a.nextID++
	id := "mem-" + strconv.Itoa(a.nextID)
	a.spreadsheets[id] = &spreadsheet{
		props:  props,
		sheets: []*sheet{{props: first}},
	}
	return id, nil
}

// AddSheet implements sheettable.Adapter.
func (a *Adapter) AddSheet(ctx context.Context, spreadsheetID string, props sheettable.SheetProperties) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.begin(ctx, OpAddSheet); err != nil {
		return err
	}
	ss, err := a.lookup(OpAddSheet, spreadsheetID)
	if err != nil {
		return err
	}
	if ss.sheet(props.Title) != nil {
		return &sheettable.RemoteError{Op: OpAddSheet, Err: fmt.Errorf("sheet %q already exists", props.Title)}
	}
	ss.sheets = append(ss.sheets, &sheet{props: props})
	return nil
}

// BatchUpdate implements sheettable.Adapter.
func (a *Adapter) BatchUpdate(ctx context.Context, spreadsheetID string, data []sheettable.ValueRange) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.begin(ctx, OpBatchUpdate); err != nil {
		return err
	}
	ss, err := a.lookup(OpBatchUpdate, spreadsheetID)
	if err != nil {
		return err
	}

	// Validate every range before touching any cell, like a single API request.
	for _, vr := range data {
		if ss.sheet(vr.Range.Sheet) == nil {
			return &sheettable.RemoteError{Op: OpBatchUpdate, Err: fmt.Errorf("%w: %s", ErrSheetNotFound, vr.Range.Sheet)}
		}
	}
	for _, vr := range data {
		sh := ss.sheet(vr.Range.Sheet)
		for i, values := range vr.Values {
			for j, v := range values {
				sh.set(vr.Range.StartRow+i, vr.Range.StartCol+j, v)
			}
		}
	}
	return nil
}

// BatchGet implements sheettable.Adapter.
func (a *Adapter) BatchGet(ctx context.Context, spreadsheetID string, ranges []sheettable.GridRange) ([]sheettable.ValueRange, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.begin(ctx, OpBatchGet); err != nil {
		return nil, err
	}
	ss, err := a.lookup(OpBatchGet, spreadsheetID)
	if err != nil {
		return nil, err
	}

	result := make([]sheettable.ValueRange, 0, len(ranges))
	for _, r := range ranges {
		sh := ss.sheet(r.Sheet)
		if sh == nil {
			return nil, &sheettable.RemoteError{Op: OpBatchGet, Err: fmt.Errorf("%w: %s", ErrSheetNotFound, r.Sheet)}
		}
		result = append(result, sheettable.ValueRange{Range: r, Values: sheettable.Clip(sh.cells, r)})
	}
	return result, nil
}

// GrantPublicRead implements sheettable.Adapter.
func (a *Adapter) GrantPublicRead(ctx context.Context, spreadsheetID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.begin(ctx, OpGrantPublicRead); err != nil {
		return err
	}
	ss, err := a.lookup(OpGrantPublicRead, spreadsheetID)
	if err != nil {
		return err
	}
	ss.public = true
	return nil
}

// begin records the call and pops a queued fault. Caller holds a.mu.
func (a *Adapter) begin(ctx context.Context, op string) error {
	a.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if queued := a.faults[op]; len(queued) > 0 {
		a.faults[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (a *Adapter) lookup(op, spreadsheetID string) (*spreadsheet, error) {
	ss, ok := a.spreadsheets[spreadsheetID]
	if !ok {
		return nil, &sheettable.RemoteError{Op: op, Err: fmt.Errorf("spreadsheet %q not found", spreadsheetID)}
	}
	return ss, nil
}

func (ss *spreadsheet) sheet(title string) *sheet {
	for _, sh := range ss.sheets {
		if sh.props.Title == title {
			return sh
		}
	}
	return nil
}

func (sh *sheet) set(row, col int, v string) {
	for len(sh.cells) < row {
		sh.cells = append(sh.cells, nil)
	}
	r := sh.cells[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = v
	sh.cells[row-1] = r

	if row > sh.props.RowCount {
		sh.props.RowCount = row
	}
}
