package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/models"
)

type RequestService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewRequestService(store domain.Store, logger *zerolog.Logger) *RequestService {
	return &RequestService{store: store, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, input models.CreateRequestInput, callerID int64) (*models.RequestDto, error) {
	exists, err := s.store.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user %d", callerID)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperr.Validation("request description is required")
	}

	request := &models.ItemRequest{Description: input.Description, RequestorID: callerID}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return &models.RequestDto{
		ID:          request.ID,
		Description: request.Description,
		RequestorID: request.RequestorID,
		Created:     request.CreatedAt,
		Items:       []models.ItemRef{},
	}, nil
}

func (s *RequestService) GetUserRequests(ctx context.Context, callerID int64) ([]*models.RequestDto, error) {
	exists, err := s.store.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user %d", callerID)
	}

	requests, err := s.store.GetUserRequests(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.toRequestDtos(ctx, requests)
}

func (s *RequestService) GetOtherUsersRequests(ctx context.Context, callerID int64, page models.Page) ([]*models.RequestDto, error) {
	exists, err := s.store.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user %d", callerID)
	}
	if page.From < 0 || page.Size <= 0 {
		return nil, apperr.Validation("invalid pagination: from=%d size=%d", page.From, page.Size)
	}

	requests, err := s.store.GetOtherUsersRequests(ctx, callerID, page)
	if err != nil {
		return nil, err
	}
	return s.toRequestDtos(ctx, requests)
}

func (s *RequestService) GetRequest(ctx context.Context, requestID, callerID int64) (*models.RequestDto, error) {
	exists, err := s.store.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user %d", callerID)
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	dtos, err := s.toRequestDtos(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return dtos[0], nil
}

// toRequestDtos дополняет запросы списком вещей, созданных в ответ на них
func (s *RequestService) toRequestDtos(ctx context.Context, requests []*models.ItemRequest) ([]*models.RequestDto, error) {
	dtos := make([]*models.RequestDto, 0, len(requests))
	for _, request := range requests {
		items, err := s.store.GetItemsByRequest(ctx, request.ID)
		if err != nil {
			return nil, err
		}

		refs := make([]models.ItemRef, 0, len(items))
		for _, item := range items {
			refs = append(refs, models.ItemRef{ID: item.ID, Name: item.Name})
		}

		dtos = append(dtos, &models.RequestDto{
			ID:          request.ID,
			Description: request.Description,
			RequestorID: request.RequestorID,
			Created:     request.CreatedAt,
			Items:       refs,
		})
	}
	return dtos, nil
}
