package lostfound

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/utils"
)

// SubmitClaim appends a pending claimant to an active item. Every accepted submission
// bumps stats.claims, whatever its later outcome.
func (s *Service) SubmitClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, draft models.ClaimDraft) (*models.Claimant, error) {
	if actor.UserID.IsZero() {
		return nil, fmt.Errorf("submit claim: %w", apperrors.ErrForbidden)
	}
	if err := utils.ValidateStruct(s.validate, draft); err != nil {
		return nil, fmt.Errorf("submit claim: %w", err)
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("submit claim: %w", err)
	}
	if item.Poster == actor.UserID {
		return nil, fmt.Errorf("submit claim on %s: %w", itemID.Hex(), apperrors.InvalidState("poster cannot claim own item"))
	}

	now := s.now()
	claimant := models.Claimant{
		ID:          uuid.NewString(),
		User:        actor.UserID,
		Description: draft.Description,
		ProofImages: append([]string(nil), draft.ProofImages...),
		Uploads:     models.OwnedUploads(draft.Uploads, draft.ProofImages),
		SubmittedAt: now,
		Status:      models.ClaimStatusPending,
	}
	// the store re-checks the item state in the same write
	if err := s.store.AppendClaimant(ctx, itemID, claimant, now); err != nil {
		return nil, fmt.Errorf("submit claim: %w", err)
	}

	metrics.ClaimsSubmitted.Inc()
	notify.Emit(ctx, s.events, notify.KeyClaimSubmitted, notify.ClaimSubmitted{
		ItemID:      itemID,
		ItemTitle:   item.Title,
		ClaimantID:  claimant.ID,
		User:        actor.UserID,
		Description: claimant.Description,
		OccurredAt:  now,
	})
	utils.Info("claim submitted", map[string]any{
		"item_id":     itemID.Hex(),
		"claimant_id": claimant.ID,
		"user":        actor.UserID.Hex(),
	})
	return &claimant, nil
}

// ReviewClaim moves one claimant from pending to the status decision leads to.
// Repeating the decision already recorded is a no-op.
func (s *Service) ReviewClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, claimantID string, decision models.ClaimDecision) (*models.Item, error) {
	if !actor.CanModerate() {
		return nil, fmt.Errorf("review claim: %w", apperrors.ErrForbidden)
	}
	if !decision.Valid() {
		return nil, fmt.Errorf("review claim: %w", apperrors.Invalid("decision", "oneof"))
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("review claim: %w", err)
	}
	now := s.now()

	claimant := item.Claimant(claimantID)
	if claimant == nil {
		return nil, fmt.Errorf("review claim: claimant %s on %s: %w", claimantID, itemID.Hex(), apperrors.ErrNotFound)
	}

	target := decision.Target()
	if claimant.Status == target {
		item.Status = item.EffectiveStatus(now)
		return item, nil
	}
	if claimant.Status.Decided() {
		return nil, fmt.Errorf("review claim %s: %w", claimantID, apperrors.InvalidState("claimant already %s", claimant.Status))
	}
	if status := item.EffectiveStatus(now); status != models.ItemStatusActive {
		return nil, fmt.Errorf("review claim %s: %w", claimantID, apperrors.InvalidState("item is %s", status))
	}

	reviewer := actor.UserID
	claimant.Status = target
	claimant.ReviewedAt = &now
	claimant.ReviewedBy = &reviewer

	var autoRejected []string
	if target == models.ClaimStatusApproved && s.autoRejectSiblings(ctx) {
		for i := range item.Claimants {
			sib := &item.Claimants[i]
			if sib.ID == claimantID || sib.Status != models.ClaimStatusPending {
				continue
			}
			sib.Status = models.ClaimStatusRejected
			sib.ReviewedAt = &now
			sib.ReviewedBy = &reviewer
			autoRejected = append(autoRejected, sib.ID)
		}
	}

	item.UpdatedAt = now
	if err := s.store.ReplaceItem(ctx, item); err != nil {
		return nil, fmt.Errorf("review claim %s: %w", claimantID, countConflict(err))
	}

	metrics.ClaimsReviewed.WithLabelValues(string(target)).Inc()
	if len(autoRejected) > 0 {
		metrics.ClaimsReviewed.WithLabelValues("auto_rejected").Add(float64(len(autoRejected)))
	}
	notify.Emit(ctx, s.events, notify.KeyClaimReviewed, notify.ClaimReviewed{
		ItemID:       itemID,
		ClaimantID:   claimantID,
		Status:       target,
		ReviewedBy:   reviewer,
		AutoRejected: autoRejected,
		OccurredAt:   now,
	})
	utils.Info("claim reviewed", map[string]any{
		"item_id":       itemID.Hex(),
		"claimant_id":   claimantID,
		"status":        target,
		"auto_rejected": len(autoRejected),
		"reviewer":      reviewer.Hex(),
	})
	return item, nil
}
