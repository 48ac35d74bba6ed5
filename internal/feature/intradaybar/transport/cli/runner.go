package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/platform/export"
)

// Fetcher sends one request and returns every received message.
type Fetcher interface {
	Fetch(ctx context.Context, opts entity.QueryOptions) ([]entity.Message, error)
}

// Store persists fetched bars.
type Store interface {
	UpsertBatch(ctx context.Context, bars []entity.StoredBar) error
}

// Runner executes one query: prints the table, then optionally exports and stores the bars.
type Runner struct {
	fetcher Fetcher
	out     io.Writer
	store   Store
}

// NewRunner creates a Runner printing to out. store may be nil when -store is not used.
func NewRunner(fetcher Fetcher, out io.Writer, store Store) *Runner {
	return &Runner{fetcher: fetcher, out: out, store: store}
}

// Run fetches, prints and then exports or stores according to opts.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	msgs, err := r.fetcher.Fetch(ctx, opts.Query)
	if err != nil {
		return err
	}
	if err := usecase.NewResponseFormatter(r.out).Format(msgs); err != nil {
		return err
	}
	if opts.OutPath == "" && !opts.Store {
		return nil
	}

	bars, err := usecase.ExtractBars(msgs)
	if err != nil {
		return fmt.Errorf("skip export: %w", err)
	}

	if opts.OutPath != "" {
		saver := export.NewBarSaver(opts.Format)
		if saver == nil {
			return fmt.Errorf("unsupported format %q (use csv, json, parquet)", opts.Format)
		}
		path := export.WithExtension(opts.OutPath, saver)
		if err := saver.Save(bars, path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		slog.Info("bars exported", "path", path, "bars", len(bars))
	}

	if opts.Store {
		if r.store == nil {
			return fmt.Errorf("store requested but no database is configured")
		}
		q := opts.Query
		stored := make([]entity.StoredBar, 0, len(bars))
		for _, b := range bars {
			stored = append(stored, entity.StoredBar{
				Security:  q.Securities[0],
				EventType: q.EventTypes[0],
				Interval:  q.BarInterval,
				Bar:       b,
			})
		}
		if err := r.store.UpsertBatch(ctx, stored); err != nil {
			return fmt.Errorf("store bars: %w", err)
		}
		slog.Info("bars stored", "security", q.Securities[0], "event_type", q.EventTypes[0], "bars", len(stored))
	}
	return nil
}
