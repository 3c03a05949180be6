package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shareit/internal/apperr"
	"shareit/internal/models"
)

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	input := models.CreateBookingInput{ItemID: 1, Start: start, End: end}

	item := &models.Item{ID: 1, Name: "Drill", Available: true, OwnerID: 10}
	booker := &models.User{ID: 20, Name: "Booker"}

	t.Run("success", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)
		repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 5
		}).Return(nil)

		svc := NewBookingService(repo, nil, testLogger())
		dto, err := svc.CreateBooking(ctx, input, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(5), dto.ID)
		assert.Equal(t, models.StatusWaiting, dto.Status)
		assert.Equal(t, "Drill", dto.Item.Name)
		assert.Equal(t, "Booker", dto.Booker.Name)
		repo.AssertExpectations(t)
	})

	t.Run("item not found", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetItem", ctx, int64(1)).Return(nil, apperr.NotFound("item 1"))

		svc := NewBookingService(repo, nil, testLogger())
		_, err := svc.CreateBooking(ctx, input, 20)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("item unavailable", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetItem", ctx, int64(1)).Return(&models.Item{ID: 1, Available: false, OwnerID: 10}, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)

		svc := NewBookingService(repo, nil, testLogger())
		_, err := svc.CreateBooking(ctx, input, 20)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("owner books own item", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("GetUser", ctx, int64(10)).Return(&models.User{ID: 10, Name: "Owner"}, nil)

		svc := NewBookingService(repo, nil, testLogger())
		_, err := svc.CreateBooking(ctx, input, 10)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))
	})

	t.Run("start in the past", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)

		svc := NewBookingService(repo, nil, testLogger())
		past := models.CreateBookingInput{ItemID: 1, Start: time.Now().Add(-time.Hour), End: end}
		_, err := svc.CreateBooking(ctx, past, 20)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("start after end", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)

		svc := NewBookingService(repo, nil, testLogger())
		swapped := models.CreateBookingInput{ItemID: 1, Start: end, End: start}
		_, err := svc.CreateBooking(ctx, swapped, 20)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})
}

func TestApproveBooking(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 1, Name: "Drill", Available: true, OwnerID: 10}
	waiting := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	booker := &models.User{ID: 20, Name: "Booker"}

	t.Run("approve", func(t *testing.T) {
		repo := new(mockStore)
		approved := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusApproved}
		repo.On("GetBooking", ctx, int64(5)).Return(waiting, nil)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("DecideBooking", ctx, int64(5), models.StatusApproved).Return(approved, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)

		svc := NewBookingService(repo, nil, testLogger())
		dto, err := svc.ApproveBooking(ctx, 5, true, 10)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, dto.Status)
		repo.AssertExpectations(t)
	})

	t.Run("reject", func(t *testing.T) {
		repo := new(mockStore)
		rejected := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusRejected}
		repo.On("GetBooking", ctx, int64(5)).Return(waiting, nil)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("DecideBooking", ctx, int64(5), models.StatusRejected).Return(rejected, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)

		svc := NewBookingService(repo, nil, testLogger())
		dto, err := svc.ApproveBooking(ctx, 5, false, 10)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, dto.Status)
	})

	t.Run("not the owner", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetBooking", ctx, int64(5)).Return(waiting, nil)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)

		svc := NewBookingService(repo, nil, testLogger())
		_, err := svc.ApproveBooking(ctx, 5, true, 20)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))
		repo.AssertNotCalled(t, "DecideBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already decided", func(t *testing.T) {
		repo := new(mockStore)
		repo.On("GetBooking", ctx, int64(5)).Return(waiting, nil)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("DecideBooking", ctx, int64(5), models.StatusApproved).
			Return(nil, apperr.Validation("booking 5 status already decided"))

		svc := NewBookingService(repo, nil, testLogger())
		_, err := svc.ApproveBooking(ctx, 5, true, 10)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})
}

func TestGetBookingAccess(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 1, Name: "Drill", OwnerID: 10}
	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	booker := &models.User{ID: 20, Name: "Booker"}

	for _, caller := range []int64{10, 20} {
		repo := new(mockStore)
		repo.On("GetBooking", ctx, int64(5)).Return(booking, nil)
		repo.On("GetItem", ctx, int64(1)).Return(item, nil)
		repo.On("GetUser", ctx, int64(20)).Return(booker, nil)

		svc := NewBookingService(repo, nil, testLogger())
		dto, err := svc.GetBooking(ctx, 5, caller)
		require.NoError(t, err)
		assert.Equal(t, int64(5), dto.ID)
	}

	// Посторонний не видит бронирование
	repo := new(mockStore)
	repo.On("GetBooking", ctx, int64(5)).Return(booking, nil)
	repo.On("GetItem", ctx, int64(1)).Return(item, nil)

	svc := NewBookingService(repo, nil, testLogger())
	_, err := svc.GetBooking(ctx, 5, 30)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestGetBookingsValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewBookingService(new(mockStore), nil, testLogger())
	page := models.Page{From: 0, Size: 10}

	_, err := svc.GetBookerBookings(ctx, 20, "BOGUS", page)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.GetBookerBookings(ctx, 20, models.StateAll, models.Page{From: -1, Size: 10})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.GetOwnerBookings(ctx, 20, models.StateAll, models.Page{From: 0, Size: 0})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	repo := new(mockStore)
	repo.On("UserExists", ctx, int64(99)).Return(false, nil)
	svc = NewBookingService(repo, nil, testLogger())
	_, err = svc.GetBookerBookings(ctx, 99, models.StateAll, page)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetBookerBookingsExpandsRefs(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 1, Name: "Drill", OwnerID: 10}
	booker := &models.User{ID: 20, Name: "Booker"}
	bookings := []*models.Booking{
		{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusApproved},
		{ID: 6, ItemID: 1, BookerID: 20, Status: models.StatusWaiting},
	}

	repo := new(mockStore)
	repo.On("UserExists", ctx, int64(20)).Return(true, nil)
	repo.On("GetBookerBookings", ctx, int64(20), models.StateAll, mock.AnythingOfType("time.Time"), mock.Anything).
		Return(bookings, nil)
	// Повторяющиеся вещь и пользователь загружаются по одному разу
	repo.On("GetItem", ctx, int64(1)).Return(item, nil).Once()
	repo.On("GetUser", ctx, int64(20)).Return(booker, nil).Once()

	svc := NewBookingService(repo, nil, testLogger())
	dtos, err := svc.GetBookerBookings(ctx, 20, models.StateAll, models.Page{From: 0, Size: 10})
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "Drill", dtos[0].Item.Name)
	assert.Equal(t, "Booker", dtos[1].Booker.Name)
	repo.AssertExpectations(t)
}
