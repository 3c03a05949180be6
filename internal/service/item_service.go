package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
)

type ItemService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, input models.CreateItemInput, callerID int64) (*models.ItemDto, error) {
	if _, err := s.store.GetUser(ctx, callerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.Validation("item name is required")
	}
	if input.Available == nil {
		return nil, apperr.Validation("item availability is required")
	}
	if input.RequestID != nil {
		if _, err := s.store.GetRequest(ctx, *input.RequestID); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		Name:        input.Name,
		Description: input.Description,
		Available:   *input.Available,
		OwnerID:     callerID,
		RequestID:   input.RequestID,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventItemCreated, item); err != nil {
			s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("publish event error")
		}
	}

	return toItemDto(item), nil
}

func (s *ItemService) UpdateItem(ctx context.Context, itemID int64, input models.UpdateItemInput, callerID int64) (*models.ItemDto, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, apperr.Forbidden("only the owner can update item %d", itemID)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.Validation("item name cannot be blank")
		}
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Available != nil {
		item.Available = *input.Available
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return toItemDto(item), nil
}

// GetItem возвращает вещь с комментариями; владельцу дополнительно
// показываются последняя и ближайшая аренды
func (s *ItemService) GetItem(ctx context.Context, itemID, callerID int64) (*models.ItemDto, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	dto := toItemDto(item)
	comments, err := s.store.GetItemComments(ctx, itemID)
	if err != nil {
		return nil, err
	}
	dto.Comments = comments

	if item.OwnerID == callerID {
		if err := s.setBookingRefs(ctx, dto, itemID); err != nil {
			return nil, err
		}
	}
	return dto, nil
}

func (s *ItemService) GetOwnerItems(ctx context.Context, callerID int64, page models.Page) ([]*models.ItemDto, error) {
	if page.From < 0 || page.Size <= 0 {
		return nil, apperr.Validation("invalid pagination: from=%d size=%d", page.From, page.Size)
	}
	exists, err := s.store.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user %d", callerID)
	}

	items, err := s.store.GetOwnerItems(ctx, callerID, page)
	if err != nil {
		return nil, err
	}

	dtos := make([]*models.ItemDto, 0, len(items))
	for _, item := range items {
		dto := toItemDto(item)
		if err := s.setBookingRefs(ctx, dto, item.ID); err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// SearchItems ищет доступные вещи; пустой запрос возвращает пустой список
// без обращения к хранилищу
func (s *ItemService) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.ItemDto, error) {
	if page.From < 0 || page.Size <= 0 {
		return nil, apperr.Validation("invalid pagination: from=%d size=%d", page.From, page.Size)
	}
	if strings.TrimSpace(text) == "" {
		return []*models.ItemDto{}, nil
	}

	items, err := s.store.SearchItems(ctx, text, page)
	if err != nil {
		return nil, err
	}

	dtos := make([]*models.ItemDto, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDto(item))
	}
	return dtos, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, itemID, callerID int64) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != callerID {
		return apperr.Forbidden("only the owner can delete item %d", itemID)
	}
	return s.store.DeleteItem(ctx, itemID)
}

func (s *ItemService) AddComment(ctx context.Context, itemID, callerID int64, input models.CreateCommentInput) (*models.CommentDto, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	author, err := s.store.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperr.Validation("comment text is required")
	}

	// Комментировать можно только после завершенной подтвержденной аренды
	finished, err := s.store.HasFinishedBooking(ctx, item.ID, callerID, time.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, apperr.Validation("user %d has no finished approved booking of item %d", callerID, itemID)
	}

	comment := &models.Comment{
		Text:     input.Text,
		ItemID:   item.ID,
		AuthorID: callerID,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: item.ID, AuthorID: callerID}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}

	return &models.CommentDto{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: author.Name,
		Created:    comment.CreatedAt,
	}, nil
}

func (s *ItemService) setBookingRefs(ctx context.Context, dto *models.ItemDto, itemID int64) error {
	now := time.Now()

	last, err := s.store.GetLastBooking(ctx, itemID, now)
	if err != nil {
		return err
	}
	if last != nil {
		dto.LastBooking = &models.BookingRef{ID: last.ID, BookerID: last.BookerID}
	}

	next, err := s.store.GetNextBooking(ctx, itemID, now)
	if err != nil {
		return err
	}
	if next != nil {
		dto.NextBooking = &models.BookingRef{ID: next.ID, BookerID: next.BookerID}
	}
	return nil
}

func toItemDto(item *models.Item) *models.ItemDto {
	return &models.ItemDto{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     item.OwnerID,
		RequestID:   item.RequestID,
	}
}
