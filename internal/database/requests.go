package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO item_requests (description, requestor_id, created_at) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query, request.Description, request.RequestorID, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created_at FROM item_requests WHERE id = ?`

	var request models.ItemRequest
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.Description, &request.RequestorID, &request.CreatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "request %d", id)
	}
	return &request, nil
}

// GetUserRequests возвращает запросы пользователя, новые первыми
func (db *DB) GetUserRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created_at FROM item_requests
              WHERE requestor_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := db.db.QueryContext(ctx, query, requestorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

// GetOtherUsersRequests возвращает запросы остальных пользователей
func (db *DB) GetOtherUsersRequests(ctx context.Context, requestorID int64, page models.Page) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created_at FROM item_requests
              WHERE requestor_id != ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.db.QueryContext(ctx, query, requestorID, page.Size, page.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get other users requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows *sql.Rows) ([]*models.ItemRequest, error) {
	var requests []*models.ItemRequest
	for rows.Next() {
		var request models.ItemRequest
		if err := rows.Scan(&request.ID, &request.Description, &request.RequestorID, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
