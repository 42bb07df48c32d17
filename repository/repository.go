//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/models"
)

// ItemStore persists lost-and-found items with their embedded claimants.
// Implementations report apperrors.ErrNotFound, ErrInvalidState and ErrConflict.
type ItemStore interface {
	InsertItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	FindItems(ctx context.Context, q models.ItemQuery, now time.Time) ([]models.Item, int64, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	// AppendClaimant appends only while the item is active and before its deadline,
	// bumping stats.claims and revision in the same write.
	AppendClaimant(ctx context.Context, id primitive.ObjectID, claimant models.Claimant, now time.Time) error
	// ReplaceItem writes item if the stored revision still equals item.Revision,
	// then advances item.Revision.
	ReplaceItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id primitive.ObjectID) (bool, error)
	// SweepExpired persists status=expired on active items past their deadline.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type ConfigFilter struct {
	PublicOnly bool
	Category   models.ConfigCategory
}

// ConfigStore persists SystemConfig entries keyed by their unique key.
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (*models.SystemConfig, error)
	ListConfigs(ctx context.Context, filter ConfigFilter) ([]models.SystemConfig, error)
	// UpsertConfig inserts or overwrites cfg by key and returns the stored entry.
	UpsertConfig(ctx context.Context, cfg *models.SystemConfig) (*models.SystemConfig, error)
	DeleteConfig(ctx context.Context, key string) (bool, error)
}
