package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ideamans/go-sheettable"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// growthRows is the slack added when a write lands below the sheet grid.
const growthRows = 100

// SheetsAdaptor implements the sheettable.Adapter interface for Google Sheets
type SheetsAdaptor struct {
	sheets  *sheets.Service
	drive   *drive.Service
	limiter *rate.Limiter
}

// NewSheetsAdaptor creates a new Google Sheets adaptor with provided options.
// The same options are used for the Sheets and the Drive clients.
func NewSheetsAdaptor(ctx context.Context, config Config, opts ...option.ClientOption) (*SheetsAdaptor, error) {
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	a := &SheetsAdaptor{
		sheets: sheetsService,
		drive:  driveService,
	}
	if config.RequestsPerMinute > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), burst)
	}
	return a, nil
}

// SpreadsheetURL returns the browser link of a spreadsheet.
func (a *SheetsAdaptor) SpreadsheetURL(id string) string {
	return SpreadsheetURL(id)
}

// SpreadsheetURL returns the browser link of a spreadsheet.
func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id + "/edit#gid=0"
}

// CreateSpreadsheet creates a spreadsheet whose first sheet is described by first
func (a *SheetsAdaptor) CreateSpreadsheet(ctx context.Context, props sheettable.SpreadsheetProperties, first sheettable.SheetProperties) (string, error) {
	const op = "spreadsheets.create"
	if err := a.wait(ctx, op); err != nil {
		return "", err
	}

	body := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:  props.Title,
			Locale: props.Locale,
		},
		Sheets: []*sheets.Sheet{
			{Properties: sheetProperties(first)},
		},
	}
	resp, err := a.sheets.Spreadsheets.Create(body).Context(ctx).Do()
	if err != nil {
		return "", remoteError(op, err)
	}
	return resp.SpreadsheetId, nil
}

// AddSheet adds a sheet to an existing spreadsheet
func (a *SheetsAdaptor) AddSheet(ctx context.Context, spreadsheetID string, sheet sheettable.SheetProperties) error {
	const op = "spreadsheets.batchUpdate"
	if err := a.wait(ctx, op); err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: sheetProperties(sheet)}},
		},
	}
	if _, err := a.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return remoteError(op, err)
	}
	return nil
}

// BatchUpdate writes every value range in a single values.batchUpdate call.
// When a write falls below the sheet grid the grid is extended and the write
// is sent again once.
func (a *SheetsAdaptor) BatchUpdate(ctx context.Context, spreadsheetID string, data []sheettable.ValueRange) error {
	const op = "values.batchUpdate"

	err := a.batchUpdateValues(ctx, spreadsheetID, data)
	if err == nil {
		return nil
	}
	if !exceedsGrid(err) {
		return remoteError(op, err)
	}

	if growErr := a.growSheets(ctx, spreadsheetID, data); growErr != nil {
		return growErr
	}
	if err := a.batchUpdateValues(ctx, spreadsheetID, data); err != nil {
		return remoteError(op, err)
	}
	return nil
}

func (a *SheetsAdaptor) batchUpdateValues(ctx context.Context, spreadsheetID string, data []sheettable.ValueRange) error {
	if err := a.wait(ctx, "values.batchUpdate"); err != nil {
		return err
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             make([]*sheets.ValueRange, 0, len(data)),
	}
	for _, vr := range data {
		values := make([][]interface{}, len(vr.Values))
		for i, row := range vr.Values {
			values[i] = make([]interface{}, len(row))
			for j, v := range row {
				values[i][j] = v
			}
		}
		req.Data = append(req.Data, &sheets.ValueRange{
			Range:          vr.Range.String(),
			MajorDimension: "ROWS",
			Values:         values,
		})
	}

	_, err := a.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

// BatchGet reads ranges with formatted values, returned in request order
func (a *SheetsAdaptor) BatchGet(ctx context.Context, spreadsheetID string, ranges []sheettable.GridRange) ([]sheettable.ValueRange, error) {
	const op = "values.batchGet"
	if err := a.wait(ctx, op); err != nil {
		return nil, err
	}

	a1 := make([]string, len(ranges))
	for i, r := range ranges {
		a1[i] = r.String()
	}

	resp, err := a.sheets.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(a1...).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteError(op, err)
	}

	result := make([]sheettable.ValueRange, len(ranges))
	for i, r := range ranges {
		result[i].Range = r
		if i >= len(resp.ValueRanges) || resp.ValueRanges[i] == nil {
			continue
		}
		if got := resp.ValueRanges[i].Range; got != "" {
			if parsed, err := sheettable.ParseRange(got); err != nil || parsed.Sheet != r.Sheet {
				return nil, &sheettable.RemoteError{Op: op, Err: fmt.Errorf("response range %q does not match request %s", got, a1[i])}
			}
		}
		rows := resp.ValueRanges[i].Values
		result[i].Values = make([][]string, len(rows))
		for j, row := range rows {
			cells := make([]string, len(row))
			for k, v := range row {
				cells[k] = cellString(v)
			}
			result[i].Values[j] = cells
		}
	}
	return result, nil
}

// GrantPublicRead creates an anyone-with-link reader permission through Drive
func (a *SheetsAdaptor) GrantPublicRead(ctx context.Context, spreadsheetID string) error {
	const op = "permissions.create"
	if err := a.wait(ctx, op); err != nil {
		return err
	}

	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := a.drive.Permissions.Create(spreadsheetID, perm).Fields("id").Context(ctx).Do(); err != nil {
		return remoteError(op, err)
	}
	return nil
}

// growSheets appends rows to every sheet whose grid is smaller than the
// rows targeted by data.
func (a *SheetsAdaptor) growSheets(ctx context.Context, spreadsheetID string, data []sheettable.ValueRange) error {
	const op = "spreadsheets.get"

	needed := make(map[string]int)
	for _, vr := range data {
		last := vr.Range.StartRow + len(vr.Values) - 1
		if vr.Range.EndRow > last {
			last = vr.Range.EndRow
		}
		if last > needed[vr.Range.Sheet] {
			needed[vr.Range.Sheet] = last
		}
	}

	if err := a.wait(ctx, op); err != nil {
		return err
	}
	ss, err := a.sheets.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return remoteError(op, err)
	}

	var requests []*sheets.Request
	for _, sh := range ss.Sheets {
		p := sh.Properties
		if p == nil || p.GridProperties == nil {
			continue
		}
		want, ok := needed[p.Title]
		if !ok || int64(want) <= p.GridProperties.RowCount {
			continue
		}
		requests = append(requests, &sheets.Request{
			AppendDimension: &sheets.AppendDimensionRequest{
				SheetId:   p.SheetId,
				Dimension: "ROWS",
				Length:    int64(want) - p.GridProperties.RowCount + growthRows,
				// The first sheet has ID 0, which would otherwise be omitted.
				ForceSendFields: []string{"SheetId"},
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	if err := a.wait(ctx, "spreadsheets.batchUpdate"); err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	if _, err := a.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return remoteError("spreadsheets.batchUpdate", err)
	}
	return nil
}

func (a *SheetsAdaptor) wait(ctx context.Context, op string) error {
	if a.limiter == nil {
		return nil
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return &sheettable.RemoteError{Op: op, Err: err}
	}
	return nil
}

func sheetProperties(p sheettable.SheetProperties) *sheets.SheetProperties {
	return &sheets.SheetProperties{
		Title:     p.Title,
		SheetType: "GRID",
		GridProperties: &sheets.GridProperties{
			RowCount:    int64(p.RowCount),
			ColumnCount: int64(p.ColumnCount),
		},
	}
}

// remoteError classifies an API failure. Quota (429) and server (5xx)
// errors are retryable, as are transport errors without an API status.
func remoteError(op string, err error) error {
	retryable := true
	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		retryable = false
	case errors.As(err, &apiErr):
		retryable = apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return &sheettable.RemoteError{Op: op, Err: err, Retryable: retryable}
}

func exceedsGrid(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) &&
		apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "exceeds grid limits")
}

// cellString converts a Google Sheets cell value to its string form
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// Check if it's actually an integer
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", val)
	}
}
