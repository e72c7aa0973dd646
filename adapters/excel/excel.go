package excel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ideamans/go-sheettable"
	"github.com/xuri/excelize/v2"
)

// Adapter implements the sheettable.Adapter interface for local .xlsx
// workbooks. Each spreadsheet is one file in Config.Dir and its ID is the
// file name.
type Adapter struct {
	config *Config
	mu     sync.RWMutex
}

// New creates a new Excel adapter with the given configuration
func New(config *Config) (*Adapter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create a copy of config to avoid external modifications
	configCopy := *config

	return &Adapter{
		config: &configCopy,
	}, nil
}

// SpreadsheetURL returns the file path of a workbook.
func (a *Adapter) SpreadsheetURL(id string) string {
	return filepath.Join(a.config.Dir, id)
}

// CreateSpreadsheet writes a new workbook named after the title. A numeric
// suffix is added when a file with that name already exists.
func (a *Adapter) CreateSpreadsheet(ctx context.Context, props sheettable.SpreadsheetProperties, first sheettable.SheetProperties) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.config.Dir, 0755); err != nil {
		return "", remoteError("create", fmt.Errorf("failed to create directory: %w", err))
	}

	id, err := a.freeName(props.Title)
	if err != nil {
		return "", remoteError("create", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// A new workbook starts with Sheet1; rename it rather than adding one.
	if err := f.SetSheetName(f.GetSheetName(0), first.Title); err != nil {
		return "", remoteError("create", fmt.Errorf("failed to name first sheet: %w", err))
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: props.Title, Language: props.Locale}); err != nil {
		return "", remoteError("create", fmt.Errorf("failed to set document properties: %w", err))
	}
	if err := f.SaveAs(a.path(id)); err != nil {
		return "", remoteError("create", fmt.Errorf("failed to save Excel file: %w", err))
	}
	return id, nil
}

// AddSheet adds a worksheet. Adding an existing title fails.
func (a *Adapter) AddSheet(ctx context.Context, spreadsheetID string, props sheettable.SheetProperties) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.update(ctx, "addSheet", spreadsheetID, func(f *excelize.File) error {
		index, err := f.GetSheetIndex(props.Title)
		if err != nil {
			return fmt.Errorf("failed to get sheet index: %w", err)
		}
		if index != -1 {
			return fmt.Errorf("sheet %q already exists", props.Title)
		}
		if _, err := f.NewSheet(props.Title); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		return nil
	})
}

// BatchUpdate writes all value ranges and saves the workbook once.
// Nothing is written when a range names an unknown sheet.
func (a *Adapter) BatchUpdate(ctx context.Context, spreadsheetID string, data []sheettable.ValueRange) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.update(ctx, "batchUpdate", spreadsheetID, func(f *excelize.File) error {
		for _, vr := range data {
			if err := requireSheet(f, vr.Range.Sheet); err != nil {
				return err
			}
		}

		for _, vr := range data {
			for i, cells := range vr.Values {
				cell, err := excelize.CoordinatesToCellName(vr.Range.StartCol, vr.Range.StartRow+i)
				if err != nil {
					return err
				}
				rowValues := make([]interface{}, len(cells))
				for j, v := range cells {
					rowValues[j] = v
				}
				if err := f.SetSheetRow(vr.Range.Sheet, cell, &rowValues); err != nil {
					return fmt.Errorf("failed to write row %d: %w", vr.Range.StartRow+i, err)
				}
			}
		}
		return nil
	})
}

// BatchGet returns the formatted cell text of each range in request order.
func (a *Adapter) BatchGet(ctx context.Context, spreadsheetID string, ranges []sheettable.GridRange) ([]sheettable.ValueRange, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := a.open(spreadsheetID)
	if err != nil {
		return nil, remoteError("batchGet", err)
	}
	defer f.Close()

	result := make([]sheettable.ValueRange, 0, len(ranges))
	grids := make(map[string][][]string)
	for _, r := range ranges {
		grid, ok := grids[r.Sheet]
		if !ok {
			if err := requireSheet(f, r.Sheet); err != nil {
				return nil, remoteError("batchGet", err)
			}
			grid, err = f.GetRows(r.Sheet)
			if err != nil {
				return nil, remoteError("batchGet", fmt.Errorf("failed to get rows: %w", err))
			}
			grids[r.Sheet] = grid
		}
		result = append(result, sheettable.ValueRange{Range: r, Values: sheettable.Clip(grid, r)})
	}
	return result, nil
}

// GrantPublicRead makes the workbook file world-readable.
func (a *Adapter) GrantPublicRead(ctx context.Context, spreadsheetID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := a.existing(spreadsheetID)
	if err != nil {
		return remoteError("grantPublicRead", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return remoteError("grantPublicRead", err)
	}
	if err := os.Chmod(path, info.Mode().Perm()|0444); err != nil {
		return remoteError("grantPublicRead", err)
	}
	return nil
}

// update opens a workbook, applies fn and saves it. Caller holds a.mu.
func (a *Adapter) update(ctx context.Context, op, spreadsheetID string, fn func(*excelize.File) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := a.open(spreadsheetID)
	if err != nil {
		return remoteError(op, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return remoteError(op, err)
	}
	if err := f.Save(); err != nil {
		return remoteError(op, fmt.Errorf("failed to save Excel file: %w", err))
	}
	return nil
}

func (a *Adapter) open(spreadsheetID string) (*excelize.File, error) {
	path, err := a.existing(spreadsheetID)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return f, nil
}

func (a *Adapter) existing(spreadsheetID string) (string, error) {
	if spreadsheetID == "" || spreadsheetID != filepath.Base(spreadsheetID) || !strings.HasSuffix(spreadsheetID, ".xlsx") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, spreadsheetID)
	}
	path := a.path(spreadsheetID)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrWorkbookNotFound, spreadsheetID)
		}
		return "", err
	}
	return path, nil
}

func (a *Adapter) path(id string) string {
	return filepath.Join(a.config.Dir, id)
}

// freeName derives an unused file name from a spreadsheet title.
func (a *Adapter) freeName(title string) (string, error) {
	base := fileStem(title)
	for n := 1; n < 1000; n++ {
		name := base + ".xlsx"
		if n > 1 {
			name = base + "-" + strconv.Itoa(n) + ".xlsx"
		}
		if _, err := os.Stat(a.path(name)); errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free file name for %q", title)
}

// fileStem keeps letters, digits, dashes and underscores; other runs become a dash.
func fileStem(title string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.TrimSpace(title) {
		switch {
		case c == '-' || c == '_' || c == '.' && b.Len() > 0,
			c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c > 0x7f && c != 0xfffd:
			b.WriteRune(c)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	stem := strings.Trim(b.String(), "-.")
	if stem == "" {
		return "spreadsheet"
	}
	return stem
}

func requireSheet(f *excelize.File, title string) error {
	index, err := f.GetSheetIndex(title)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if index == -1 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, title)
	}
	return nil
}

// remoteError wraps a workbook failure. Local file errors never heal on
// their own, so none are retryable.
func remoteError(op string, err error) error {
	return &sheettable.RemoteError{Op: op, Err: err}
}
