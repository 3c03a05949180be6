package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, now)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return nil
}

// GetItemComments возвращает комментарии вещи вместе с именами авторов
func (db *DB) GetItemComments(ctx context.Context, itemID int64) ([]models.CommentDto, error) {
	query := `SELECT c.id, c.text, u.name, c.created_at
              FROM comments c JOIN users u ON u.id = c.author_id
              WHERE c.item_id = ? ORDER BY c.created_at DESC, c.id DESC`
	rows, err := db.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item comments: %w", err)
	}
	defer rows.Close()

	var comments []models.CommentDto
	for rows.Next() {
		var c models.CommentDto
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorName, &c.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
