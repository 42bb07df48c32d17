//go:generate mockgen -source=controllers.go -destination=mock_services.go -package=controllers

package controllers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

// ItemService is the poster-facing side of the lost-and-found board.
type ItemService interface {
	Create(ctx context.Context, actor models.Actor, draft models.ItemDraft) (*models.Item, error)
	Find(ctx context.Context, q models.ItemQuery) (*models.ItemPage, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	View(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	Update(ctx context.Context, actor models.Actor, id primitive.ObjectID, patch models.ItemPatch) (*models.Item, error)
	SubmitClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, draft models.ClaimDraft) (*models.Claimant, error)
}

// ModerationService holds the moderator-only operations.
type ModerationService interface {
	ApproveClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, claimantID string) (*models.Item, error)
	RejectClaim(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, claimantID string) (*models.Item, error)
	MarkResolved(ctx context.Context, actor models.Actor, itemID primitive.ObjectID) (*models.Item, error)
	DeleteItem(ctx context.Context, actor models.Actor, itemID primitive.ObjectID) (bool, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type ConfigService interface {
	ListPublic(ctx context.Context) ([]models.SystemConfig, error)
	List(ctx context.Context, actor models.Actor, category models.ConfigCategory) ([]models.SystemConfig, error)
	Get(ctx context.Context, actor models.Actor, key string) (*models.SystemConfig, error)
	Upsert(ctx context.Context, actor models.Actor, draft models.ConfigDraft) (*models.SystemConfig, error)
	Delete(ctx context.Context, actor models.Actor, key string) (bool, error)
}

// Pinger checks that the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the handler factories need.
type Deps struct {
	Items      ItemService
	Moderation ModerationService
	Configs    ConfigService
	Images     utils.ImageStore
	Store      Pinger
}
