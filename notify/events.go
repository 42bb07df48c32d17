package notify

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/models"
)

// Routing keys.
const (
	KeyItemCreated    = "lostfound.item.created"
	KeyItemUpdated    = "lostfound.item.updated"
	KeyClaimSubmitted = "lostfound.claim.submitted"
	KeyClaimReviewed  = "lostfound.claim.reviewed"
	KeyItemResolved   = "lostfound.item.resolved"
	KeyItemDeleted    = "lostfound.item.deleted"
	KeyItemsExpired   = "lostfound.items.expired"
	KeyConfigChanged  = "sysconfig.changed"
)

type ItemCreated struct {
	ItemID     primitive.ObjectID `json:"item_id"`
	Poster     primitive.ObjectID `json:"poster"`
	Type       models.ItemType    `json:"type"`
	Category   models.Category    `json:"category"`
	Title      string             `json:"title"`
	ExpiresAt  time.Time          `json:"expires_at"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type ItemUpdated struct {
	ItemID     primitive.ObjectID `json:"item_id"`
	UpdatedBy  primitive.ObjectID `json:"updated_by"`
	Revision   int64              `json:"revision"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type ClaimSubmitted struct {
	ItemID      primitive.ObjectID `json:"item_id"`
	ItemTitle   string             `json:"item_title"`
	ClaimantID  string             `json:"claimant_id"`
	User        primitive.ObjectID `json:"user"`
	Description string             `json:"description"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

type ClaimReviewed struct {
	ItemID       primitive.ObjectID `json:"item_id"`
	ClaimantID   string             `json:"claimant_id"`
	Status       models.ClaimStatus `json:"status"`
	ReviewedBy   primitive.ObjectID `json:"reviewed_by"`
	AutoRejected []string           `json:"auto_rejected,omitempty"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

type ItemResolved struct {
	ItemID     primitive.ObjectID `json:"item_id"`
	ResolvedBy primitive.ObjectID `json:"resolved_by"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type ItemDeleted struct {
	ItemID     primitive.ObjectID `json:"item_id"`
	DeletedBy  primitive.ObjectID `json:"deleted_by"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type ItemsExpired struct {
	Count      int64     `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ConfigChanged struct {
	Key        string             `json:"key"`
	UpdatedBy  primitive.ObjectID `json:"updated_by"`
	Deleted    bool               `json:"deleted"`
	OccurredAt time.Time          `json:"occurred_at"`
}
