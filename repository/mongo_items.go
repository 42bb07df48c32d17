package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/models"
)

func (s *MongoStore) InsertItem(ctx context.Context, item *models.Item) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	// $push needs an array, never null
	if item.Claimants == nil {
		item.Claimants = []models.Claimant{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	if _, err := s.items.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert item: %w", wrapError(err))
	}
	return nil
}

func (s *MongoStore) GetItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	var item models.Item
	if err := s.items.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, fmt.Errorf("get item %s: %w", id.Hex(), wrapError(err))
	}
	return &item, nil
}

// itemFilter translates q into a document filter. Status filters on effective status,
// so stale active documents past their deadline count as expired.
func itemFilter(q models.ItemQuery, now time.Time) bson.D {
	filter := bson.D{}
	if q.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: q.Type})
	}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	if !q.Poster.IsZero() {
		filter = append(filter, bson.E{Key: "poster", Value: q.Poster})
	}
	switch q.Status {
	case models.ItemStatusActive:
		filter = append(filter,
			bson.E{Key: "status", Value: models.ItemStatusActive},
			bson.E{Key: "expiresAt", Value: bson.M{"$gt": now}},
		)
	case models.ItemStatusExpired:
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.M{"status": models.ItemStatusExpired},
			bson.M{"status": models.ItemStatusActive, "expiresAt": bson.M{"$lte": now}},
		}})
	case models.ItemStatusResolved:
		filter = append(filter, bson.E{Key: "status", Value: models.ItemStatusResolved})
	}
	if q.Text != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.M{"$search": q.Text}})
	}
	return filter
}

func itemSort(order models.SortOrder) bson.D {
	switch order {
	case models.SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortViews:
		return bson.D{{Key: "stats.views", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func (s *MongoStore) FindItems(ctx context.Context, q models.ItemQuery, now time.Time) ([]models.Item, int64, error) {
	q = q.Normalize()
	filter := itemFilter(q, now)

	total, err := s.items.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", wrapError(err))
	}

	opts := options.Find().
		SetSort(itemSort(q.Sort)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cur, err := s.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find items: %w", wrapError(err))
	}
	defer cur.Close(ctx)

	items := []models.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode items: %w", err)
	}
	return items, total, nil
}

func (s *MongoStore) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.items.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stats.views": 1}})
	if err != nil {
		return fmt.Errorf("increment views %s: %w", id.Hex(), wrapError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("increment views %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) AppendClaimant(ctx context.Context, id primitive.ObjectID, claimant models.Claimant, now time.Time) error {
	filter := bson.M{
		"_id":       id,
		"status":    models.ItemStatusActive,
		"expiresAt": bson.M{"$gt": now},
	}
	update := bson.M{
		"$push": bson.M{"claimants": claimant},
		"$inc":  bson.M{"stats.claims": 1, "revision": 1},
		"$set":  bson.M{"updatedAt": now},
	}

	res, err := s.items.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("append claimant to %s: %w", id.Hex(), wrapError(err))
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// nothing matched: either the item is gone or it is no longer claimable
	current, err := s.GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("append claimant: %w", err)
	}
	return fmt.Errorf("append claimant to %s: %w", id.Hex(),
		apperrors.InvalidState("item is %s", current.EffectiveStatus(now)))
}

// ReplaceItem rewrites every mutable field guarded by the revision counter.
// stats.views is left alone so concurrent view bumps are never lost.
func (s *MongoStore) ReplaceItem(ctx context.Context, item *models.Item) error {
	if item.Claimants == nil {
		item.Claimants = []models.Claimant{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	expected := item.Revision
	update := bson.M{"$set": bson.M{
		"title":        item.Title,
		"description":  item.Description,
		"type":         item.Type,
		"category":     item.Category,
		"images":       item.Images,
		"uploads":      item.Uploads,
		"location":     item.Location,
		"contact":      item.Contact,
		"item":         item.Descriptor,
		"timeInfo":     item.TimeInfo,
		"status":       item.Status,
		"poster":       item.Poster,
		"stats.claims": item.Stats.Claims,
		"claimants":    item.Claimants,
		"expiresAt":    item.ExpiresAt,
		"revision":     expected + 1,
		"updatedAt":    item.UpdatedAt,
	}}

	res, err := s.items.UpdateOne(ctx, bson.M{"_id": item.ID, "revision": expected}, update)
	if err != nil {
		return fmt.Errorf("replace item %s: %w", item.ID.Hex(), wrapError(err))
	}
	if res.MatchedCount == 0 {
		n, err := s.items.CountDocuments(ctx, bson.M{"_id": item.ID})
		if err != nil {
			return fmt.Errorf("replace item %s: %w", item.ID.Hex(), wrapError(err))
		}
		if n == 0 {
			return fmt.Errorf("replace item %s: %w", item.ID.Hex(), apperrors.ErrNotFound)
		}
		return fmt.Errorf("replace item %s at revision %d: %w", item.ID.Hex(), expected, apperrors.ErrConflict)
	}

	item.Revision = expected + 1
	return nil
}

func (s *MongoStore) DeleteItem(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete item %s: %w", id.Hex(), wrapError(err))
	}
	return res.DeletedCount == 1, nil
}

func (s *MongoStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.items.UpdateMany(ctx,
		bson.M{"status": models.ItemStatusActive, "expiresAt": bson.M{"$lte": now}},
		bson.M{
			"$set": bson.M{"status": models.ItemStatusExpired, "updatedAt": now},
			"$inc": bson.M{"revision": 1},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("sweep expired items: %w", wrapError(err))
	}
	return res.ModifiedCount, nil
}
