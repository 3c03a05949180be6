package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/apperr"
	"shareit/internal/models"
)

const bookingColumns = `id, start_time, end_time, item_id, booker_id, status, created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_time, end_time, item_id, booker_id, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query,
		booking.StartTime.UTC(),
		booking.EndTime.UTC(),
		booking.ItemID,
		booking.BookerID,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	var booking models.Booking
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.StartTime, &booking.EndTime, &booking.ItemID,
		&booking.BookerID, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "booking %d", id)
	}
	return &booking, nil
}

// DecideBooking переводит бронирование из WAITING в итоговый статус.
// Чтение и запись выполняются в одной транзакции, чтобы два одновременных
// решения не прошли оба.
func (db *DB) DecideBooking(ctx context.Context, id int64, status string) (*models.Booking, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
	if err != nil {
		return nil, notFoundOr(err, "booking %d", id)
	}
	if current != models.StatusWaiting {
		return nil, apperr.Validation("booking %d status already decided", id)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`, status, now, id); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	var booking models.Booking
	err = tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id).Scan(
		&booking.ID, &booking.StartTime, &booking.EndTime, &booking.ItemID,
		&booking.BookerID, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reread booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &booking, nil
}

// stateClause возвращает SQL-условие и аргументы для фильтра состояния
func stateClause(state string, now time.Time) (string, []any) {
	switch state {
	case models.StateCurrent:
		return ` AND b.start_time <= ? AND b.end_time >= ?`, []any{now, now}
	case models.StatePast:
		return ` AND b.end_time < ?`, []any{now}
	case models.StateFuture:
		return ` AND b.start_time > ?`, []any{now}
	case models.StateWaiting:
		return ` AND b.status = ?`, []any{models.StatusWaiting}
	case models.StateRejected:
		return ` AND b.status = ?`, []any{models.StatusRejected}
	default: // ALL
		return ``, nil
	}
}

// GetBookerBookings возвращает бронирования пользователя в состоянии state,
// новые по началу аренды первыми
func (db *DB) GetBookerBookings(ctx context.Context, bookerID int64, state string, now time.Time, page models.Page) ([]*models.Booking, error) {
	query := `SELECT b.id, b.start_time, b.end_time, b.item_id, b.booker_id, b.status, b.created_at, b.updated_at
              FROM bookings b WHERE b.booker_id = ?`
	args := []any{bookerID}

	clause, clauseArgs := stateClause(state, now.UTC())
	query += clause
	args = append(args, clauseArgs...)

	query += ` ORDER BY b.start_time DESC, b.id ASC LIMIT ? OFFSET ?`
	args = append(args, page.Size, page.From)

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get booker bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// GetOwnerBookings возвращает бронирования на вещи владельца
func (db *DB) GetOwnerBookings(ctx context.Context, ownerID int64, state string, now time.Time, page models.Page) ([]*models.Booking, error) {
	query := `SELECT b.id, b.start_time, b.end_time, b.item_id, b.booker_id, b.status, b.created_at, b.updated_at
              FROM bookings b JOIN items i ON i.id = b.item_id WHERE i.owner_id = ?`
	args := []any{ownerID}

	clause, clauseArgs := stateClause(state, now.UTC())
	query += clause
	args = append(args, clauseArgs...)

	query += ` ORDER BY b.start_time DESC, b.id ASC LIMIT ? OFFSET ?`
	args = append(args, page.Size, page.From)

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// HasFinishedBooking проверяет, что у пользователя была завершенная
// подтвержденная аренда вещи. Это условие для добавления комментария.
func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
                SELECT 1 FROM bookings
                WHERE item_id = ? AND booker_id = ? AND end_time < ? AND status = ?
              )`
	var exists bool
	err := db.db.QueryRowContext(ctx, query, itemID, bookerID, now.UTC(), models.StatusApproved).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return exists, nil
}

// GetLastBooking возвращает последнюю завершенную подтвержденную аренду вещи
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND end_time < ? AND status = ?
              ORDER BY end_time DESC LIMIT 1`
	return db.getOneBooking(ctx, query, itemID, now.UTC(), models.StatusApproved)
}

// GetNextBooking возвращает ближайшую будущую аренду вещи, не отклоненную владельцем
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND start_time > ? AND status NOT IN (?, ?)
              ORDER BY start_time ASC LIMIT 1`
	return db.getOneBooking(ctx, query, itemID, now.UTC(), models.StatusRejected, models.StatusCanceled)
}

func (db *DB) getOneBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	var booking models.Booking
	err := db.db.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID, &booking.StartTime, &booking.EndTime, &booking.ItemID,
		&booking.BookerID, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func scanBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(
			&booking.ID, &booking.StartTime, &booking.EndTime, &booking.ItemID,
			&booking.BookerID, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBookingsForExport выгружает все бронирования с именами вещей и
// пользователей для выгрузки в xlsx.
func (db *DB) GetBookingsForExport(ctx context.Context) ([]models.BookingExportRow, error) {
	query := `SELECT b.id, i.name, u.name, b.start_time, b.end_time, b.status, b.created_at
              FROM bookings b
              JOIN items i ON i.id = b.item_id
              JOIN users u ON u.id = b.booker_id
              ORDER BY b.id ASC`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings for export: %w", err)
	}
	defer rows.Close()

	var result []models.BookingExportRow
	for rows.Next() {
		var row models.BookingExportRow
		if err := rows.Scan(
			&row.BookingID, &row.ItemName, &row.BookerName,
			&row.StartTime, &row.EndTime, &row.Status, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
