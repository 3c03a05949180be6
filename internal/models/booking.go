package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Status    string    `json:"status"` // WAITING, APPROVED, REJECTED, CANCELED
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
