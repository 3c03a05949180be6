package models

import "time"

// Per-operation input structs. Each carries only the fields the operation
// accepts; pointer fields are optional on partial updates.

type CreateUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type CreateItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"request_id"`
}

type UpdateItemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type CreateBookingInput struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type CreateCommentInput struct {
	Text string `json:"text"`
}

type CreateRequestInput struct {
	Description string `json:"description"`
}

// Page задает параметры пагинации списков
type Page struct {
	From int
	Size int
}
