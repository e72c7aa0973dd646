package excel

import "errors"

var (
	// ErrMissingDir is returned when the workbook directory is not specified
	ErrMissingDir = errors.New("workbook directory is required")

	// ErrSheetNotFound is returned when the specified sheet doesn't exist
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrWorkbookNotFound is returned when the spreadsheet ID names no workbook
	ErrWorkbookNotFound = errors.New("workbook not found")

	// ErrInvalidID is returned for spreadsheet IDs that are not plain .xlsx file names
	ErrInvalidID = errors.New("invalid workbook id")
)
