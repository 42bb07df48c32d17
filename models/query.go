package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortViews  SortOrder = "views"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit far inside int range on every platform.
	MaxPage = 1 << 20
)

// ItemQuery holds the filter and paging parameters of one item search.
// Status filters on effective status, not the stored field.
type ItemQuery struct {
	Type     ItemType
	Status   ItemStatus
	Category Category
	Poster   primitive.ObjectID
	Text     string
	Sort     SortOrder
	Page     int
	Limit    int
}

// Normalize clamps paging values and fills defaults.
func (q ItemQuery) Normalize() ItemQuery {
	q.Text = strings.TrimSpace(q.Text)
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

func (q ItemQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// Terms splits the free-text search into lowercase words.
func (q ItemQuery) Terms() []string {
	return strings.Fields(strings.ToLower(q.Text))
}

type ItemPage struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
