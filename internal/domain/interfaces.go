package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)

	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DecideBooking(ctx context.Context, id int64, status string) (*models.Booking, error)
	GetBookerBookings(ctx context.Context, bookerID int64, state string, now time.Time, page models.Page) ([]*models.Booking, error)
	GetOwnerBookings(ctx context.Context, ownerID int64, state string, now time.Time, page models.Page) ([]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetItemComments(ctx context.Context, itemID int64) ([]models.CommentDto, error)

	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetUserRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetOtherUsersRequests(ctx context.Context, requestorID int64, page models.Page) ([]*models.ItemRequest, error)
}

type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, callerID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type ExportWorker interface {
	EnqueueExport(ctx context.Context) error
}

type UserService interface {
	CreateUser(ctx context.Context, input models.CreateUserInput) (*models.User, error)
	UpdateUser(ctx context.Context, userID int64, input models.UpdateUserInput) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

type ItemService interface {
	CreateItem(ctx context.Context, input models.CreateItemInput, callerID int64) (*models.ItemDto, error)
	UpdateItem(ctx context.Context, itemID int64, input models.UpdateItemInput, callerID int64) (*models.ItemDto, error)
	GetItem(ctx context.Context, itemID, callerID int64) (*models.ItemDto, error)
	GetOwnerItems(ctx context.Context, callerID int64, page models.Page) ([]*models.ItemDto, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.ItemDto, error)
	DeleteItem(ctx context.Context, itemID, callerID int64) error
	AddComment(ctx context.Context, itemID, callerID int64, input models.CreateCommentInput) (*models.CommentDto, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, input models.CreateBookingInput, callerID int64) (*models.BookingDto, error)
	ApproveBooking(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.BookingDto, error)
	GetBooking(ctx context.Context, bookingID, callerID int64) (*models.BookingDto, error)
	GetBookerBookings(ctx context.Context, callerID int64, state string, page models.Page) ([]*models.BookingDto, error)
	GetOwnerBookings(ctx context.Context, callerID int64, state string, page models.Page) ([]*models.BookingDto, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, input models.CreateRequestInput, callerID int64) (*models.RequestDto, error)
	GetUserRequests(ctx context.Context, callerID int64) ([]*models.RequestDto, error)
	GetOtherUsersRequests(ctx context.Context, callerID int64, page models.Page) ([]*models.RequestDto, error)
	GetRequest(ctx context.Context, requestID, callerID int64) (*models.RequestDto, error)
}
