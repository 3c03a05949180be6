package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shareit/internal/models"
)

type fakeExportStore struct {
	rows []models.BookingExportRow
	err  error
}

func (s *fakeExportStore) GetBookingsForExport(ctx context.Context) ([]models.BookingExportRow, error) {
	return s.rows, s.err
}

func testWorkerLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func TestExportWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := &fakeExportStore{rows: []models.BookingExportRow{
		{BookingID: 1, ItemName: "Drill", BookerName: "Alice", StartTime: now, EndTime: now.Add(time.Hour), Status: "APPROVED", CreatedAt: now},
		{BookingID: 2, ItemName: "Saw", BookerName: "Bob", StartTime: now, EndTime: now.Add(time.Hour), Status: "WAITING", CreatedAt: now},
	}}

	w := NewExportWorker(store, dir, RetryPolicy{}, testWorkerLogger())
	w.now = func() time.Time { return now }

	require.NoError(t, w.Export(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bookings_20260830_120000.xlsx", entries[0].Name())

	f, err := excelize.OpenFile(dir + "/" + entries[0].Name())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "Drill", rows[1][1])
	assert.Equal(t, "WAITING", rows[2][5])
}

func TestExportStoreError(t *testing.T) {
	store := &fakeExportStore{err: errors.New("db closed")}
	w := NewExportWorker(store, t.TempDir(), RetryPolicy{}, testWorkerLogger())
	assert.Error(t, w.Export(context.Background()))
}

func TestEnqueueCoalesces(t *testing.T) {
	w := NewExportWorker(&fakeExportStore{}, t.TempDir(), RetryPolicy{}, testWorkerLogger())

	// Очередь вмещает один запрос, лишние не блокируют
	for i := 0; i < 5; i++ {
		require.NoError(t, w.EnqueueExport(context.Background()))
	}
	assert.Len(t, w.queue, 1)
}

func TestStartProcessesQueue(t *testing.T) {
	dir := t.TempDir()
	store := &fakeExportStore{rows: []models.BookingExportRow{{BookingID: 1, ItemName: "Drill", BookerName: "Alice"}}}
	w := NewExportWorker(store, dir, RetryPolicy{MaxRetries: 1}, testWorkerLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.NoError(t, w.EnqueueExport(ctx))

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	// Задержка ограничена максимумом
	assert.Equal(t, 10*time.Second, policy.NextDelay(10))
	// Некорректная попытка трактуется как первая
	assert.Equal(t, time.Second, policy.NextDelay(0))
}
