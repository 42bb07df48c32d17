package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

func (s ClaimStatus) Valid() bool {
	return s == ClaimStatusPending || s == ClaimStatusApproved || s == ClaimStatusRejected
}

// Decided reports whether a moderator has already reviewed the claim.
func (s ClaimStatus) Decided() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// Claimant is one entry of an item's append-only claim list.
// ID is assigned at submission and never reused, so reviews address entries by ID, not position.
type Claimant struct {
	ID          string              `bson:"id" json:"id"`
	User        primitive.ObjectID  `bson:"user" json:"user"`
	Description string              `bson:"description" json:"description"`
	ProofImages []string            `bson:"proofImages,omitempty" json:"proofImages,omitempty"`
	Uploads     []string            `bson:"uploads,omitempty" json:"-"`
	SubmittedAt time.Time           `bson:"submittedAt" json:"submittedAt"`
	Status      ClaimStatus         `bson:"status" json:"status"`
	ReviewedAt  *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
}

type ClaimDraft struct {
	Description string   `json:"description" validate:"required,max=1000"`
	ProofImages []string `json:"proofImages" validate:"max=9,dive,url"`
	Uploads     []string `json:"-"`
}

// ClaimDecision is the moderator verdict on a single claimant.
type ClaimDecision string

const (
	DecisionApprove ClaimDecision = "approve"
	DecisionReject  ClaimDecision = "reject"
)

// Target returns the claimant status the decision leads to.
func (d ClaimDecision) Target() ClaimStatus {
	if d == DecisionApprove {
		return ClaimStatusApproved
	}
	return ClaimStatusRejected
}

func (d ClaimDecision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}
