package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/campus-services-go/models"
)

// configDocument is the stored shape of a SystemConfig; value stays raw until the
// declared type is known.
type configDocument struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty"`
	Key         string                `bson:"key"`
	Value       bson.RawValue         `bson:"value"`
	Type        models.ConfigType     `bson:"type"`
	Description string                `bson:"description,omitempty"`
	Category    models.ConfigCategory `bson:"category"`
	IsPublic    bool                  `bson:"isPublic"`
	UpdatedBy   primitive.ObjectID    `bson:"updatedBy"`
	CreatedAt   time.Time             `bson:"createdAt"`
	UpdatedAt   time.Time             `bson:"updatedAt"`
}

func (d configDocument) toModel() (*models.SystemConfig, error) {
	var raw any
	if err := d.Value.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decode config %q value: %w", d.Key, err)
	}
	value, err := models.ConfigValueFrom(d.Type, normalizeBSON(raw))
	if err != nil {
		return nil, fmt.Errorf("decode config %q value: %w", d.Key, err)
	}
	return &models.SystemConfig{
		ID:          d.ID,
		Key:         d.Key,
		Value:       value,
		Type:        d.Type,
		Description: d.Description,
		Category:    d.Category,
		IsPublic:    d.IsPublic,
		UpdatedBy:   d.UpdatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// normalizeBSON converts driver container and integer types into the shapes
// encoding/json produces, so both boundaries hand the same payloads to ConfigValueFrom.
func normalizeBSON(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalizeBSON(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalizeBSON(val)
		}
		return m
	case primitive.A:
		a := make([]any, len(t))
		for i, val := range t {
			a[i] = normalizeBSON(val)
		}
		return a
	case []any:
		a := make([]any, len(t))
		for i, val := range t {
			a[i] = normalizeBSON(val)
		}
		return a
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func (s *MongoStore) GetConfig(ctx context.Context, key string) (*models.SystemConfig, error) {
	var doc configDocument
	if err := s.configs.FindOne(ctx, bson.M{"key": key}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("get config %q: %w", key, wrapError(err))
	}
	return doc.toModel()
}

func (s *MongoStore) ListConfigs(ctx context.Context, filter ConfigFilter) ([]models.SystemConfig, error) {
	q := bson.M{}
	if filter.PublicOnly {
		q["isPublic"] = true
	}
	if filter.Category != "" {
		q["category"] = filter.Category
	}

	cur, err := s.configs.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", wrapError(err))
	}
	defer cur.Close(ctx)

	out := []models.SystemConfig{}
	for cur.Next(ctx) {
		var doc configDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		cfg, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	return out, cur.Err()
}

func (s *MongoStore) UpsertConfig(ctx context.Context, cfg *models.SystemConfig) (*models.SystemConfig, error) {
	update := bson.M{
		"$set": bson.M{
			"value":       cfg.Value.Raw(),
			"type":        cfg.Type,
			"description": cfg.Description,
			"category":    cfg.Category,
			"isPublic":    cfg.IsPublic,
			"updatedBy":   cfg.UpdatedBy,
			"updatedAt":   cfg.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": cfg.UpdatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc configDocument
	if err := s.configs.FindOneAndUpdate(ctx, bson.M{"key": cfg.Key}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("upsert config %q: %w", cfg.Key, wrapError(err))
	}
	return doc.toModel()
}

func (s *MongoStore) DeleteConfig(ctx context.Context, key string) (bool, error) {
	res, err := s.configs.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return false, fmt.Errorf("delete config %q: %w", key, wrapError(err))
	}
	return res.DeletedCount == 1, nil
}
