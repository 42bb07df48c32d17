package lostfound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/utils"
)

func (s *Service) ApproveClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, claimantID string) (*models.Item, error) {
	return s.ReviewClaim(ctx, actor, itemID, claimantID, models.DecisionApprove)
}

func (s *Service) RejectClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, claimantID string) (*models.Item, error) {
	return s.ReviewClaim(ctx, actor, itemID, claimantID, models.DecisionReject)
}

// MarkResolved closes an active item. Resolving a resolved item is a no-op.
func (s *Service) MarkResolved(ctx context.Context, actor models.Actor, itemID primitive.ObjectID) (*models.Item, error) {
	if !actor.CanModerate() {
		return nil, fmt.Errorf("resolve item: %w", apperrors.ErrForbidden)
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("resolve item: %w", err)
	}

	now := s.now()
	current := item.EffectiveStatus(now)
	if current == models.ItemStatusResolved {
		item.Status = current
		return item, nil
	}
	if !current.CanTransition(models.ItemStatusResolved) {
		return nil, fmt.Errorf("resolve item %s: %w", itemID.Hex(), apperrors.InvalidState("item is %s", current))
	}

	item.Status = models.ItemStatusResolved
	item.UpdatedAt = now
	if err := s.store.ReplaceItem(ctx, item); err != nil {
		return nil, fmt.Errorf("resolve item %s: %w", itemID.Hex(), countConflict(err))
	}

	metrics.ItemTransitions.WithLabelValues(string(models.ItemStatusResolved)).Inc()
	notify.Emit(ctx, s.events, notify.KeyItemResolved, notify.ItemResolved{
		ItemID:     itemID,
		ResolvedBy: actor.UserID,
		OccurredAt: now,
	})
	utils.Info("item resolved", map[string]any{"item_id": itemID.Hex(), "moderator": actor.UserID.Hex()})
	return item, nil
}

// DeleteItem hard-deletes an item and, best effort, its stored images.
// Deleting an absent item reports false with no error.
func (s *Service) DeleteItem(ctx context.Context, actor models.Actor, itemID primitive.ObjectID) (bool, error) {
	if !actor.CanModerate() {
		return false, fmt.Errorf("delete item: %w", apperrors.ErrForbidden)
	}

	item, err := s.store.GetItem(ctx, itemID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}

	deleted, err := s.store.DeleteItem(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.releaseImages(ctx, itemID, item.StoredUploads())

	now := s.now()
	notify.Emit(ctx, s.events, notify.KeyItemDeleted, notify.ItemDeleted{
		ItemID:     itemID,
		DeletedBy:  actor.UserID,
		OccurredAt: now,
	})
	utils.Info("item deleted", map[string]any{"item_id": itemID.Hex(), "moderator": actor.UserID.Hex()})
	return true, nil
}

// releaseImages deletes uploads best effort. Callers pass only URLs recorded as uploads
// of the item, never URLs taken from a request body.
func (s *Service) releaseImages(ctx context.Context, itemID primitive.ObjectID, urls []string) {
	for _, url := range urls {
		if err := s.images.Delete(ctx, url); err != nil {
			utils.Warn("image cleanup failed", map[string]any{
				"item_id": itemID.Hex(),
				"url":     url,
				"error":   err.Error(),
			})
		}
	}
}

// SweepExpired persists the expired status on every active item past its deadline.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.store.SweepExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	if n > 0 {
		metrics.ItemTransitions.WithLabelValues(string(models.ItemStatusExpired)).Add(float64(n))
		notify.Emit(ctx, s.events, notify.KeyItemsExpired, notify.ItemsExpired{Count: n, OccurredAt: now})
	}
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	utils.Info("expiry sweeper started", map[string]any{"interval": interval.String()})
	for {
		select {
		case <-ctx.Done():
			utils.Info("expiry sweeper stopped", nil)
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				utils.Error("expiry sweep failed", map[string]any{"error": err.Error()})
				continue
			}
			if n > 0 {
				utils.Info("expired items swept", map[string]any{"count": n})
			}
		}
	}
}
