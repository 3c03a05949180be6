package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"shareit/internal/models"
)

const exportSheet = "Bookings"

var exportHeader = []string{"ID", "Item", "Booker", "Start", "End", "Status", "Created"}

// ExportStore is the subset of storage the worker needs.
type ExportStore interface {
	GetBookingsForExport(ctx context.Context) ([]models.BookingExportRow, error)
}

// ExportWorker writes xlsx snapshots of all bookings. Requests are
// coalesced: while a snapshot is pending, further enqueues are no-ops.
type ExportWorker struct {
	store       ExportStore
	path        string
	retryPolicy RetryPolicy
	queue       chan struct{}
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewExportWorker builds a worker with sane defaults.
func NewExportWorker(store ExportStore, path string, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ExportWorker{
		store:       store,
		path:        path,
		retryPolicy: retry,
		queue:       make(chan struct{}, 1),
		logger:      logger,
		now:         time.Now,
	}
}

// EnqueueExport schedules a snapshot. Never blocks.
func (w *ExportWorker) EnqueueExport(ctx context.Context) error {
	select {
	case w.queue <- struct{}{}:
	default:
		// Снапшот уже запланирован, свежие данные попадут в него
	}
	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Str("path", w.path).Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue:
			w.runWithRetry(ctx)
		}
	}
}

func (w *ExportWorker) runWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		err := w.Export(ctx)
		if err == nil {
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Error().Err(err).
			Int("attempt", attempt).
			Dur("next_delay", delay).
			Msg("booking export failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
	w.logger.Error().Int("attempts", w.retryPolicy.MaxRetries).Msg("booking export gave up")
}

// Export writes a single snapshot of all bookings to a timestamped
// xlsx file under the configured directory.
func (w *ExportWorker) Export(ctx context.Context) error {
	rows, err := w.store.GetBookingsForExport(ctx)
	if err != nil {
		return fmt.Errorf("fetch bookings: %w", err)
	}

	if err := os.MkdirAll(w.path, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := []interface{}{
			row.BookingID,
			row.ItemName,
			row.BookerName,
			row.StartTime.Format(time.RFC3339),
			row.EndTime.Format(time.RFC3339),
			row.Status,
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	name := fmt.Sprintf("bookings_%s.xlsx", w.now().UTC().Format("20060102_150405"))
	target := filepath.Join(w.path, name)
	if err := f.SaveAs(target); err != nil {
		return fmt.Errorf("save %s: %w", target, err)
	}

	w.logger.Info().Str("file", target).Int("rows", len(rows)).Msg("booking export written")
	return nil
}
