package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"
)

type BookingService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, input models.CreateBookingInput, callerID int64) (*models.BookingDto, error) {
	item, err := s.store.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	booker, err := s.store.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, apperr.Validation("item %d is not available for booking", item.ID)
	}
	// Владелец не может бронировать собственную вещь
	if item.OwnerID == callerID {
		return nil, apperr.Forbidden("owner cannot book own item")
	}

	now := time.Now()
	if input.Start.Before(now) || input.End.Before(now) {
		return nil, apperr.Validation("booking dates cannot be in the past")
	}
	if !input.Start.Before(input.End) {
		return nil, apperr.Validation("booking start must be before end")
	}

	booking := &models.Booking{
		StartTime: input.Start,
		EndTime:   input.End,
		ItemID:    item.ID,
		BookerID:  callerID,
		Status:    models.StatusWaiting,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID)
	metrics.IncBooking("created")

	return toBookingDto(booking, item, booker), nil
}

func (s *BookingService) ApproveBooking(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.BookingDto, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	item, err := s.store.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != callerID {
		return nil, apperr.Forbidden("only the item owner can decide booking %d", bookingID)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	// Проверка WAITING и смена статуса выполняются в одной транзакции
	updated, err := s.store.DecideBooking(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	booker, err := s.store.GetUser(ctx, updated.BookerID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(eventType, updated, item.OwnerID)
	if approved {
		metrics.IncBooking("approved")
	} else {
		metrics.IncBooking("rejected")
	}

	return toBookingDto(updated, item, booker), nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, callerID int64) (*models.BookingDto, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	item, err := s.store.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != callerID && item.OwnerID != callerID {
		return nil, apperr.Forbidden("no access to booking %d", bookingID)
	}

	booker, err := s.store.GetUser(ctx, booking.BookerID)
	if err != nil {
		return nil, err
	}
	return toBookingDto(booking, item, booker), nil
}

func (s *BookingService) GetBookerBookings(ctx context.Context, callerID int64, state string, page models.Page) ([]*models.BookingDto, error) {
	if err := s.checkListArgs(ctx, callerID, state, page); err != nil {
		return nil, err
	}
	bookings, err := s.store.GetBookerBookings(ctx, callerID, state, time.Now(), page)
	if err != nil {
		return nil, err
	}
	return s.toBookingDtos(ctx, bookings)
}

func (s *BookingService) GetOwnerBookings(ctx context.Context, callerID int64, state string, page models.Page) ([]*models.BookingDto, error) {
	if err := s.checkListArgs(ctx, callerID, state, page); err != nil {
		return nil, err
	}
	bookings, err := s.store.GetOwnerBookings(ctx, callerID, state, time.Now(), page)
	if err != nil {
		return nil, err
	}
	return s.toBookingDtos(ctx, bookings)
}

func (s *BookingService) checkListArgs(ctx context.Context, callerID int64, state string, page models.Page) error {
	if !models.ValidState(state) {
		return apperr.Validation("unknown state: %s", state)
	}
	if page.From < 0 || page.Size <= 0 {
		return apperr.Validation("invalid pagination: from=%d size=%d", page.From, page.Size)
	}
	exists, err := s.store.UserExists(ctx, callerID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("user %d", callerID)
	}
	return nil
}

// toBookingDtos раскрывает ссылки на вещи и пользователей, загружая каждую
// сущность не более одного раза
func (s *BookingService) toBookingDtos(ctx context.Context, bookings []*models.Booking) ([]*models.BookingDto, error) {
	items := make(map[int64]*models.Item)
	users := make(map[int64]*models.User)

	dtos := make([]*models.BookingDto, 0, len(bookings))
	for _, booking := range bookings {
		item, ok := items[booking.ItemID]
		if !ok {
			var err error
			item, err = s.store.GetItem(ctx, booking.ItemID)
			if err != nil {
				return nil, err
			}
			items[booking.ItemID] = item
		}

		booker, ok := users[booking.BookerID]
		if !ok {
			var err error
			booker, err = s.store.GetUser(ctx, booking.BookerID)
			if err != nil {
				return nil, err
			}
			users[booking.BookerID] = booker
		}

		dtos = append(dtos, toBookingDto(booking, item, booker))
	}
	return dtos, nil
}

func toBookingDto(booking *models.Booking, item *models.Item, booker *models.User) *models.BookingDto {
	return &models.BookingDto{
		ID:      booking.ID,
		Start:   booking.StartTime,
		End:     booking.EndTime,
		Status:  booking.Status,
		Item:    models.ItemRef{ID: item.ID, Name: item.Name},
		Booker:  models.UserRef{ID: booker.ID, Name: booker.Name},
		Created: booking.CreatedAt,
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, ownerID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		OwnerID:   ownerID,
		Status:    booking.Status,
		Start:     booking.StartTime,
		End:       booking.EndTime,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
