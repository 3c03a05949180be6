package models

const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELED"
)

const (
	StateAll      = "ALL"
	StateCurrent  = "CURRENT"
	StatePast     = "PAST"
	StateFuture   = "FUTURE"
	StateWaiting  = "WAITING"
	StateRejected = "REJECTED"
)

const (
	// DefaultPageSize размер страницы по умолчанию
	DefaultPageSize = 10

	// RateLimitRequests количество запросов в окне на одного пользователя
	RateLimitRequests = 60

	// RateLimitWindow окно ограничения частоты запросов в секундах
	RateLimitWindow = 60
)

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// ValidState reports whether s is a known booking list filter.
func ValidState(s string) bool {
	switch s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return true
	}
	return false
}
