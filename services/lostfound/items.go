package lostfound

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/utils"
)

// Create validates draft and stores it as a new active item owned by actor.
func (s *Service) Create(ctx context.Context, actor models.Actor, draft models.ItemDraft) (*models.Item, error) {
	if actor.UserID.IsZero() {
		return nil, fmt.Errorf("create item: %w", apperrors.ErrForbidden)
	}
	if err := utils.ValidateStruct(s.validate, draft); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.defaultTTL)
	if draft.ExpiresAt != nil {
		if !draft.ExpiresAt.After(now) {
			return nil, fmt.Errorf("create item: %w", apperrors.Invalid("expiresAt", "future"))
		}
		expiresAt = draft.ExpiresAt.UTC()
	}

	item := &models.Item{
		ID:          primitive.NewObjectID(),
		Title:       draft.Title,
		Description: draft.Description,
		Type:        draft.Type,
		Category:    draft.Category,
		Images:      append([]string{}, draft.Images...),
		Uploads:     models.OwnedUploads(draft.Uploads, draft.Images),
		Location:    draft.Location,
		Contact:     draft.Contact,
		Descriptor:  draft.Descriptor,
		TimeInfo:    draft.TimeInfo,
		Status:      models.ItemStatusActive,
		Poster:      actor.UserID,
		Stats:       models.Stats{},
		Claimants:   []models.Claimant{},
		ExpiresAt:   expiresAt,
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	metrics.ItemsCreated.WithLabelValues(string(item.Type)).Inc()
	notify.Emit(ctx, s.events, notify.KeyItemCreated, notify.ItemCreated{
		ItemID:     item.ID,
		Poster:     item.Poster,
		Type:       item.Type,
		Category:   item.Category,
		Title:      item.Title,
		ExpiresAt:  item.ExpiresAt,
		OccurredAt: now,
	})
	utils.Info("item created", map[string]any{
		"item_id": item.ID.Hex(),
		"type":    item.Type,
		"poster":  item.Poster.Hex(),
	})
	return item, nil
}

// Find returns one page of items matching q with their effective status.
func (s *Service) Find(ctx context.Context, q models.ItemQuery) (*models.ItemPage, error) {
	if err := validateQuery(q); err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	q = q.Normalize()
	now := s.now()

	items, total, err := s.store.FindItems(ctx, q, now)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	return &models.ItemPage{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func validateQuery(q models.ItemQuery) error {
	ve := &apperrors.ValidationError{}
	if q.Type != "" && !q.Type.Valid() {
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "type", Rule: "oneof"})
	}
	if q.Status != "" && !q.Status.Valid() {
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "status", Rule: "oneof"})
	}
	if q.Category != "" && !q.Category.Valid() {
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "category", Rule: "oneof"})
	}
	switch q.Sort {
	case "", models.SortNewest, models.SortOldest, models.SortViews:
	default:
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "sort", Rule: "oneof"})
	}
	if q.Page < 0 {
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "page", Rule: "min"})
	}
	if q.Page > models.MaxPage {
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "page", Rule: "max"})
	}
	if q.Limit < 0 {
		ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "limit", Rule: "min"})
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Get reads one item with its effective status applied.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Status = item.EffectiveStatus(s.now())
	return item, nil
}

// View counts a detail view and returns the item.
func (s *Service) View(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	if err := s.store.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update applies a poster edit. Only the poster or an admin may edit, and only while the item is active.
func (s *Service) Update(ctx context.Context, actor models.Actor, id primitive.ObjectID, patch models.ItemPatch) (*models.Item, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("update item: %w", apperrors.Invalid("body", "required"))
	}
	if err := utils.ValidateStruct(s.validate, patch); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if item.Poster != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("update item %s: %w", id.Hex(), apperrors.ErrForbidden)
	}

	now := s.now()
	if status := item.EffectiveStatus(now); status != models.ItemStatusActive {
		return nil, fmt.Errorf("update item %s: %w", id.Hex(), apperrors.InvalidState("item is %s", status))
	}

	patch.Apply(item)
	unlisted := item.PruneUploads()
	item.UpdatedAt = now
	if err := s.store.ReplaceItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", countConflict(err))
	}
	s.releaseImages(ctx, item.ID, unlisted)

	notify.Emit(ctx, s.events, notify.KeyItemUpdated, notify.ItemUpdated{
		ItemID:     item.ID,
		UpdatedBy:  actor.UserID,
		Revision:   item.Revision,
		OccurredAt: now,
	})
	return item, nil
}
