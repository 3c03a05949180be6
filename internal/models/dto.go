package models

import "time"

// ItemRef is a short item reference embedded in responses.
type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserRef is a short user reference embedded in responses.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingRef is a short booking reference for item views.
type BookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"booker_id"`
}

// BookingDto is the booking response shape: foreign keys are expanded into
// short references so callers do not need extra lookups.
type BookingDto struct {
	ID      int64     `json:"id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Status  string    `json:"status"`
	Item    ItemRef   `json:"item"`
	Booker  UserRef   `json:"booker"`
	Created time.Time `json:"created_at"`
}

// CommentDto carries the author name alongside the comment.
type CommentDto struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemDto is the item response; comments and the owner's last/next booking
// are filled on single-item reads.
type ItemDto struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	OwnerID     int64        `json:"owner_id"`
	RequestID   *int64       `json:"request_id,omitempty"`
	LastBooking *BookingRef  `json:"last_booking,omitempty"`
	NextBooking *BookingRef  `json:"next_booking,omitempty"`
	Comments    []CommentDto `json:"comments,omitempty"`
}

// BookingExportRow is a flattened booking with item and booker names,
// used by the xlsx export worker.
type BookingExportRow struct {
	BookingID  int64
	ItemName   string
	BookerName string
	StartTime  time.Time
	EndTime    time.Time
	Status     string
	CreatedAt  time.Time
}

// RequestDto is the item-request response; Items lists items created in
// answer to the request.
type RequestDto struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequestorID int64     `json:"requestor_id"`
	Created     time.Time `json:"created"`
	Items       []ItemRef `json:"items"`
}
