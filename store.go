package sheettable

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	defaultRowCount    = 1000
	defaultColumnCount = 10

	// headerRows is the number of rows above the first data row.
	headerRows = 1
)

// Store maps a Schema onto the sheets of one spreadsheet and offers
// key-based row operations on each table. It holds no copy of table
// contents: every operation is a live round-trip through the Adapter.
type Store struct {
	adapter Adapter
	schema  Schema
	config  Config
	logger  *zap.Logger

	mu            sync.RWMutex
	spreadsheetID string

	// locks serialize scan-then-write sequences per table.
	locks map[string]*sync.Mutex
}

// New creates a Store for the given schema. spreadsheetID may be empty when
// the spreadsheet is going to be created with CreateSpreadsheet.
func New(adapter Adapter, spreadsheetID string, schema Schema, config *Config) (*Store, error) {
	if adapter == nil {
		return nil, fmt.Errorf("adapter is required")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	var cfg Config
	if config != nil {
		cfg = *config
	}
	cfg = cfg.withDefaults()

	locks := make(map[string]*sync.Mutex, len(schema))
	for _, t := range schema {
		locks[t.Title] = &sync.Mutex{}
	}

	// Keep a private copy so later edits by the caller cannot reorder columns.
	owned := make(Schema, len(schema))
	for i, t := range schema {
		owned[i] = TableDef{Title: t.Title, Columns: append([]string(nil), t.Columns...)}
	}

	return &Store{
		adapter:       adapter,
		schema:        owned,
		config:        cfg,
		logger:        cfg.Logger.Named("sheettable"),
		spreadsheetID: spreadsheetID,
		locks:         locks,
	}, nil
}

// Schema returns the tables managed by the store.
func (s *Store) Schema() Schema {
	return s.schema
}

// SpreadsheetID returns the ID of the backing spreadsheet.
func (s *Store) SpreadsheetID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spreadsheetID
}

// URL returns a link to the spreadsheet when the adapter can build one,
// otherwise the spreadsheet ID.
func (s *Store) URL() string {
	id := s.SpreadsheetID()
	if u, ok := s.adapter.(interface{ SpreadsheetURL(id string) string }); ok && id != "" {
		return u.SpreadsheetURL(id)
	}
	return id
}

// CreateSpreadsheet creates a new spreadsheet holding every declared table,
// in declaration order, writes the header rows and grants public read access.
// The store switches to the new spreadsheet and its ID is returned.
func (s *Store) CreateSpreadsheet(ctx context.Context, title string, rowCount, columnCount int) (string, error) {
	first := s.sheetProperties(s.schema[0], rowCount, columnCount)

	id, err := s.adapter.CreateSpreadsheet(ctx, SpreadsheetProperties{Title: title, Locale: s.config.Locale}, first)
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", title, err)
	}

	s.mu.Lock()
	s.spreadsheetID = id
	s.mu.Unlock()

	s.logger.Info("spreadsheet created",
		zap.String("spreadsheet_id", id),
		zap.String("url", s.URL()),
		zap.Strings("tables", s.schema.Titles()))

	for _, t := range s.schema[1:] {
		if err := s.adapter.AddSheet(ctx, id, s.sheetProperties(t, rowCount, columnCount)); err != nil {
			return id, fmt.Errorf("create table %q: %w", t.Title, err)
		}
	}

	headers := make([]ValueRange, len(s.schema))
	for i, t := range s.schema {
		headers[i] = t.header()
	}
	err = s.retry(ctx, "write headers", func(ctx context.Context) error {
		return s.adapter.BatchUpdate(ctx, id, headers)
	})
	if err != nil {
		return id, err
	}

	err = s.retry(ctx, "grant public read", func(ctx context.Context) error {
		return s.adapter.GrantPublicRead(ctx, id)
	})
	if err != nil {
		return id, err
	}

	return id, nil
}

// CreateTable adds one declared table to the current spreadsheet and writes
// its header row. Calling it twice for the same table fails remotely.
func (s *Store) CreateTable(ctx context.Context, title string, rowCount, columnCount int) error {
	def, err := s.table(title)
	if err != nil {
		return err
	}
	id, err := s.requireSpreadsheet()
	if err != nil {
		return err
	}

	if err := s.adapter.AddSheet(ctx, id, s.sheetProperties(def, rowCount, columnCount)); err != nil {
		return fmt.Errorf("create table %q: %w", title, err)
	}
	return s.retry(ctx, "write header "+title, func(ctx context.Context) error {
		return s.adapter.BatchUpdate(ctx, id, []ValueRange{def.header()})
	})
}

// AddRow writes row into table, replacing the row with the same key if one
// exists, else reusing the first free slot, else appending. It returns the
// row number written.
func (s *Store) AddRow(ctx context.Context, table string, row []string) (int, error) {
	def, err := s.table(table)
	if err != nil {
		return 0, err
	}
	if len(row) == 0 || row[0] == "" {
		return 0, fmt.Errorf("%w: empty key", ErrInvalidRow)
	}
	if len(row) > len(def.Columns) {
		return 0, fmt.Errorf("%w: %d values for %d columns of %q", ErrInvalidRow, len(row), len(def.Columns), table)
	}
	id, err := s.requireSpreadsheet()
	if err != nil {
		return 0, err
	}

	cells := make([]string, len(def.Columns))
	copy(cells, row)

	lock := s.locks[table]
	lock.Lock()
	defer lock.Unlock()

	keys, err := s.scanKeys(ctx, id, def)
	if err != nil {
		return 0, err
	}

	rowNum := 0
	free := 0
	for i, k := range keys {
		if k == cells[0] {
			rowNum = i + headerRows + 1
			break
		}
		if k == "" && free == 0 {
			free = i + headerRows + 1
		}
	}
	if rowNum == 0 {
		rowNum = free
	}
	if rowNum == 0 {
		rowNum = len(keys) + headerRows + 1
	}

	if err := s.writeRow(ctx, id, def, rowNum, cells); err != nil {
		return 0, err
	}
	s.logger.Debug("row written", zap.String("table", table), zap.Int("row", rowNum), zap.String("key", cells[0]))
	return rowNum, nil
}

// RemoveRow blanks every cell of the first row whose key matches. The row
// keeps its position and becomes a free slot.
func (s *Store) RemoveRow(ctx context.Context, table, key string) error {
	def, err := s.table(table)
	if err != nil {
		return err
	}
	id, err := s.requireSpreadsheet()
	if err != nil {
		return err
	}

	lock := s.locks[table]
	lock.Lock()
	defer lock.Unlock()

	keys, err := s.scanKeys(ctx, id, def)
	if err != nil {
		return err
	}

	rowNum := 0
	if key != "" {
		for i, k := range keys {
			if k == key {
				rowNum = i + headerRows + 1
				break
			}
		}
	}
	if rowNum == 0 {
		return fmt.Errorf("%w: %q in %s", ErrKeyNotFound, key, table)
	}

	if err := s.writeRow(ctx, id, def, rowNum, make([]string, len(def.Columns))); err != nil {
		return err
	}
	s.logger.Debug("row cleared", zap.String("table", table), zap.Int("row", rowNum), zap.String("key", key))
	return nil
}

// ListKeyColumn returns the key cells of every data row up to the last used
// one. Soft-deleted rows appear as empty strings.
func (s *Store) ListKeyColumn(ctx context.Context, table string) ([]string, error) {
	def, err := s.table(table)
	if err != nil {
		return nil, err
	}
	id, err := s.requireSpreadsheet()
	if err != nil {
		return nil, err
	}
	return s.scanKeys(ctx, id, def)
}

// GetRowByKey returns the first row whose key matches, keyed by column name.
// An empty map is returned when no row matches.
func (s *Store) GetRowByKey(ctx context.Context, table, key string) (map[string]string, error) {
	rows, err := s.readRows(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if key != "" && r.Key == key {
			return r.Values, nil
		}
	}
	return map[string]string{}, nil
}

// Rows returns every data row with a non-empty key, in sheet order.
func (s *Store) Rows(ctx context.Context, table string) ([]Row, error) {
	rows, err := s.readRows(ctx, table)
	if err != nil {
		return nil, err
	}
	result := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Key != "" {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *Store) readRows(ctx context.Context, table string) ([]Row, error) {
	def, err := s.table(table)
	if err != nil {
		return nil, err
	}
	id, err := s.requireSpreadsheet()
	if err != nil {
		return nil, err
	}

	r := GridRange{Sheet: def.Title, StartCol: 1, StartRow: headerRows + 1, EndCol: len(def.Columns)}
	values, err := s.get(ctx, id, r)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(values))
	for i, cells := range values {
		rows = append(rows, newRow(i+headerRows+1, def.Columns, cells))
	}
	return rows, nil
}

// scanKeys reads the open-ended key column below the header.
func (s *Store) scanKeys(ctx context.Context, id string, def TableDef) ([]string, error) {
	r := GridRange{Sheet: def.Title, StartCol: 1, StartRow: headerRows + 1, EndCol: 1}
	values, err := s.get(ctx, id, r)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(values))
	for i, cells := range values {
		if len(cells) > 0 {
			keys[i] = cells[0]
		}
	}

	// Trailing free slots are not part of the used range.
	for len(keys) > 0 && keys[len(keys)-1] == "" {
		keys = keys[:len(keys)-1]
	}
	return keys, nil
}

func (s *Store) get(ctx context.Context, id string, r GridRange) ([][]string, error) {
	var resp []ValueRange
	err := s.retry(ctx, "read "+r.String(), func(ctx context.Context) error {
		var err error
		resp, err = s.adapter.BatchGet(ctx, id, []GridRange{r})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, nil
	}
	return resp[0].Values, nil
}

func (s *Store) writeRow(ctx context.Context, id string, def TableDef, rowNum int, cells []string) error {
	data := []ValueRange{{
		Range:  RowRange(def.Title, rowNum, len(def.Columns)),
		Values: [][]string{cells},
	}}
	return s.retry(ctx, "write "+data[0].Range.String(), func(ctx context.Context) error {
		return s.adapter.BatchUpdate(ctx, id, data)
	})
}

func (s *Store) table(title string) (TableDef, error) {
	def, ok := s.schema.Table(title)
	if !ok {
		return TableDef{}, fmt.Errorf("%w: %q", ErrUnknownTable, title)
	}
	return def, nil
}

func (s *Store) requireSpreadsheet() (string, error) {
	id := s.SpreadsheetID()
	if id == "" {
		return "", ErrNoSpreadsheet
	}
	return id, nil
}

func (s *Store) sheetProperties(def TableDef, rowCount, columnCount int) SheetProperties {
	if rowCount <= headerRows {
		rowCount = defaultRowCount
	}
	if columnCount <= 0 {
		columnCount = defaultColumnCount
	}
	if columnCount < len(def.Columns) {
		columnCount = len(def.Columns)
	}
	return SheetProperties{Title: def.Title, RowCount: rowCount, ColumnCount: columnCount}
}
