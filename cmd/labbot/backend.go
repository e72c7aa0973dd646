package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
	"github.com/ideamans/go-sheettable/adapters/googlesheets"
	"github.com/ideamans/go-sheettable/adapters/memory"
	"github.com/ideamans/go-sheettable/coursework"
	"github.com/ideamans/go-sheettable/internal/config"
	"github.com/ideamans/go-sheettable/internal/metrics"
	"github.com/ideamans/go-sheettable/roster"
)

// schema lists every table labbot keeps in its spreadsheet.
func schema() sheettable.Schema {
	return sheettable.Merge(roster.Tables(), coursework.Tables())
}

// newAdapter builds the configured backend and its recommended store settings.
func newAdapter(ctx context.Context, sc config.SpreadsheetConfig) (sheettable.Adapter, *sheettable.Config, error) {
	switch sc.Backend {
	case config.BackendGoogle:
		a, err := googlesheets.NewWithJSONKeyFile(ctx, googlesheets.Config{
			RequestsPerMinute: sc.RequestsPerMinute,
			Burst:             sc.Burst,
		}, sc.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to google sheets: %w", err)
		}
		return a, googlesheets.DefaultStoreConfig(), nil

	case config.BackendExcel:
		a, err := excel.New(&excel.Config{Dir: sc.ExcelDir})
		if err != nil {
			return nil, nil, fmt.Errorf("open excel dir: %w", err)
		}
		return a, excel.DefaultStoreConfig(), nil

	case config.BackendMemory:
		return memory.New(), &sheettable.Config{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", sc.Backend)
	}
}

// openStore connects to the configured spreadsheet. When m is not nil
// every backend call is instrumented on it.
func openStore(ctx context.Context, m *metrics.Metrics) (*sheettable.Store, error) {
	adapter, storeCfg, err := newAdapter(ctx, cfg.Spreadsheet)
	if err != nil {
		return nil, err
	}
	if m != nil {
		adapter = metrics.Instrument(adapter, m)
	}

	if cfg.Spreadsheet.MaxRetries != 0 {
		storeCfg.MaxRetries = cfg.Spreadsheet.MaxRetries
	}
	if cfg.Spreadsheet.RetryInterval != 0 {
		storeCfg.RetryInterval = cfg.Spreadsheet.RetryInterval
	}
	storeCfg.Locale = cfg.Spreadsheet.Locale
	storeCfg.Logger = logger

	return sheettable.New(adapter, cfg.Spreadsheet.ID, schema(), storeCfg)
}

// openRoster opens a store that must already point at a spreadsheet.
func openRoster(ctx context.Context) (*roster.Roster, error) {
	if cfg.Spreadsheet.ID == "" {
		return nil, fmt.Errorf("%w: set spreadsheet.id or run \"labbot init\"", sheettable.ErrNoSpreadsheet)
	}
	store, err := openStore(ctx, nil)
	if err != nil {
		return nil, err
	}
	return roster.New(store), nil
}

// newMetrics registers labbot collectors and the Go runtime collectors.
func newMetrics() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, metrics.New(reg)
}
