package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItemType string

const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryDocuments   Category = "documents"
	CategoryAccessories Category = "accessories"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryKeys        Category = "keys"
	CategoryCards       Category = "cards"
	CategoryBags        Category = "bags"
	CategoryOthers      Category = "others"
)

// Categories lists the closed category enum in display order.
var Categories = []Category{
	CategoryElectronics, CategoryDocuments, CategoryAccessories, CategoryClothing,
	CategoryBooks, CategoryKeys, CategoryCards, CategoryBags, CategoryOthers,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusResolved ItemStatus = "resolved"
	ItemStatusExpired  ItemStatus = "expired"
)

func (s ItemStatus) Valid() bool {
	return s == ItemStatusActive || s == ItemStatusResolved || s == ItemStatusExpired
}

// Terminal reports whether no transition leaves s.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusResolved || s == ItemStatusExpired
}

// CanTransition reports whether an item may move from s to next.
// Only active items move, and only to one of the terminal states.
func (s ItemStatus) CanTransition(next ItemStatus) bool {
	return s == ItemStatusActive && next.Terminal()
}

// Location is free text; Storage only makes sense for found items (where it is being kept).
type Location struct {
	Place   string `bson:"place,omitempty" json:"place,omitempty" validate:"max=200"`
	Detail  string `bson:"detail,omitempty" json:"detail,omitempty" validate:"max=500"`
	Storage string `bson:"storage,omitempty" json:"storage,omitempty" validate:"max=200"`
}

type Contact struct {
	Name   string `bson:"name" json:"name" validate:"required,max=50"`
	Phone  string `bson:"phone" json:"phone" validate:"required,max=30"`
	Wechat string `bson:"wechat,omitempty" json:"wechat,omitempty" validate:"max=50"`
	QQ     string `bson:"qq,omitempty" json:"qq,omitempty" validate:"max=20"`
}

type ItemDescriptor struct {
	Name            string   `bson:"name,omitempty" json:"name,omitempty" validate:"max=100"`
	Brand           string   `bson:"brand,omitempty" json:"brand,omitempty" validate:"max=50"`
	Color           string   `bson:"color,omitempty" json:"color,omitempty" validate:"max=30"`
	Model           string   `bson:"model,omitempty" json:"model,omitempty" validate:"max=50"`
	Characteristics []string `bson:"characteristics,omitempty" json:"characteristics,omitempty" validate:"max=20,dive,max=50"`
}

type TimeInfo struct {
	LostAt  *time.Time `bson:"lostAt,omitempty" json:"lostAt,omitempty"`
	FoundAt *time.Time `bson:"foundAt,omitempty" json:"foundAt,omitempty"`
}

type Stats struct {
	Views  int64 `bson:"views" json:"views"`
	Claims int64 `bson:"claims" json:"claims"`
}

type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Type        ItemType           `bson:"type" json:"type"`
	Category    Category           `bson:"category" json:"category"`
	Images      []string           `bson:"images" json:"images"`
	Uploads     []string           `bson:"uploads,omitempty" json:"-"`
	Location    Location           `bson:"location" json:"location"`
	Contact     Contact            `bson:"contact" json:"contact"`
	Descriptor  ItemDescriptor     `bson:"item" json:"item"`
	TimeInfo    TimeInfo           `bson:"timeInfo" json:"timeInfo"`
	Status      ItemStatus         `bson:"status" json:"status"`
	Poster      primitive.ObjectID `bson:"poster" json:"poster"`
	Stats       Stats              `bson:"stats" json:"stats"`
	Claimants   []Claimant         `bson:"claimants" json:"claimants"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expiresAt"`
	Revision    int64              `bson:"revision" json:"revision"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveStatus is the status the item must be treated as having at now.
// A stored terminal status wins; a stored active status past the deadline is stale.
func (it *Item) EffectiveStatus(now time.Time) ItemStatus {
	if it.Status.Terminal() {
		return it.Status
	}
	if !now.Before(it.ExpiresAt) {
		return ItemStatusExpired
	}
	return ItemStatusActive
}

// Claimant returns the claimant with the given id, or nil.
func (it *Item) Claimant(id string) *Claimant {
	for i := range it.Claimants {
		if it.Claimants[i].ID == id {
			return &it.Claimants[i]
		}
	}
	return nil
}

// StoredUploads returns the images this service uploaded for the item and its claimants.
// Only these may be removed from the image store; listed URLs can point anywhere.
func (it *Item) StoredUploads() []string {
	out := append([]string(nil), it.Uploads...)
	for _, c := range it.Claimants {
		out = append(out, c.Uploads...)
	}
	return out
}

// PruneUploads drops uploads no longer listed in Images and returns them.
func (it *Item) PruneUploads() []string {
	kept, dropped := splitListed(it.Uploads, it.Images)
	it.Uploads = kept
	return dropped
}

// RedactClaimants trims the claim list to what viewer may see. Moderators and the
// poster see every entry, anyone else only their own. Stats.Claims is left as is.
func (it *Item) RedactClaimants(viewer Actor) {
	if viewer.CanModerate() || (!viewer.UserID.IsZero() && viewer.UserID == it.Poster) {
		return
	}
	own := make([]Claimant, 0)
	for _, c := range it.Claimants {
		if !viewer.UserID.IsZero() && c.User == viewer.UserID {
			own = append(own, c)
		}
	}
	it.Claimants = own
}

// OwnedUploads returns the entries of uploads that are also listed, without duplicates.
func OwnedUploads(uploads, listed []string) []string {
	kept, _ := splitListed(uploads, listed)
	return kept
}

func splitListed(uploads, listed []string) (kept, dropped []string) {
	in := make(map[string]bool, len(listed))
	for _, u := range listed {
		in[u] = true
	}
	seen := make(map[string]bool, len(uploads))
	for _, u := range uploads {
		if seen[u] {
			continue
		}
		seen[u] = true
		if in[u] {
			kept = append(kept, u)
		} else {
			dropped = append(dropped, u)
		}
	}
	return kept, dropped
}

// ItemDraft is the user-supplied part of a new item.
type ItemDraft struct {
	Title       string         `json:"title" validate:"required,max=100"`
	Description string         `json:"description" validate:"required,max=1000"`
	Type        ItemType       `json:"type" validate:"required,oneof=lost found"`
	Category    Category       `json:"category" validate:"required,oneof=electronics documents accessories clothing books keys cards bags others"`
	Images      []string       `json:"images" validate:"max=9,dive,url"`
	Location    Location       `json:"location"`
	Contact     Contact        `json:"contact"`
	Descriptor  ItemDescriptor `json:"item"`
	TimeInfo    TimeInfo       `json:"timeInfo"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`

	// Uploads are the images stored from this request's files; never read from the body.
	Uploads []string `json:"-"`
}

// ItemPatch carries poster edits; nil fields are left untouched. Status is not patchable.
type ItemPatch struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string         `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
	Category    *Category       `json:"category,omitempty" validate:"omitempty,oneof=electronics documents accessories clothing books keys cards bags others"`
	Images      []string        `json:"images,omitempty" validate:"omitempty,max=9,dive,url"`
	Location    *Location       `json:"location,omitempty"`
	Contact     *Contact        `json:"contact,omitempty"`
	Descriptor  *ItemDescriptor `json:"item,omitempty"`
	TimeInfo    *TimeInfo       `json:"timeInfo,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Images == nil &&
		p.Location == nil && p.Contact == nil && p.Descriptor == nil && p.TimeInfo == nil
}

// Apply copies the set fields of p onto it.
func (p ItemPatch) Apply(it *Item) {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Images != nil {
		it.Images = append([]string(nil), p.Images...)
	}
	if p.Location != nil {
		it.Location = *p.Location
	}
	if p.Contact != nil {
		it.Contact = *p.Contact
	}
	if p.Descriptor != nil {
		it.Descriptor = *p.Descriptor
	}
	if p.TimeInfo != nil {
		it.TimeInfo = *p.TimeInfo
	}
}
