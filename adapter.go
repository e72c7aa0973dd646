package sheettable

import "context"

// SpreadsheetProperties describes a spreadsheet to create.
type SpreadsheetProperties struct {
	Title  string
	Locale string
}

// SheetProperties describes a single sheet (table) and its grid size.
type SheetProperties struct {
	Title       string
	RowCount    int
	ColumnCount int
}

// ValueRange is a block of cell values addressed by a range.
// Values are row-major; trailing empty cells and rows may be omitted on reads.
type ValueRange struct {
	Range  GridRange
	Values [][]string
}

// Adapter interface defines the remote spreadsheet operations the Store relies on.
// Implementations should wrap transport failures in *RemoteError so the Store
// can decide whether to retry.
type Adapter interface {
	// CreateSpreadsheet creates a spreadsheet holding the first sheet and returns its ID
	CreateSpreadsheet(ctx context.Context, props SpreadsheetProperties, first SheetProperties) (string, error)

	// AddSheet adds a sheet to an existing spreadsheet
	AddSheet(ctx context.Context, spreadsheetID string, sheet SheetProperties) error

	// BatchUpdate writes every value range in a single request
	BatchUpdate(ctx context.Context, spreadsheetID string, data []ValueRange) error

	// BatchGet reads the given ranges, returned in request order
	BatchGet(ctx context.Context, spreadsheetID string, ranges []GridRange) ([]ValueRange, error)

	// GrantPublicRead lets anyone with the link read the spreadsheet
	GrantPublicRead(ctx context.Context, spreadsheetID string) error
}
