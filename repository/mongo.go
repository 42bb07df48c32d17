package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/utils"
)

// Collection names.
const (
	ColItems   = "lostfound_items"
	ColConfigs = "system_configs"
)

// MongoStore implements ItemStore and ConfigStore on MongoDB.
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	items   *mongo.Collection
	configs *mongo.Collection
}

// NewMongoStore connects, pings and returns a store bound to dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return newMongoStore(cli, dbName), nil
}

func newMongoStore(cli *mongo.Client, dbName string) *MongoStore {
	db := cli.Database(dbName)
	return &MongoStore{
		client:  cli,
		db:      db,
		items:   db.Collection(ColItems),
		configs: db.Collection(ColConfigs),
	}
}

func (s *MongoStore) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// Ping reports whether the server is reachable. Backs the /healthz readiness check.
func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

// EnsureIndexes creates the lookup indexes both collections rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("type_status_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category"),
		},
		{
			Keys:    bson.D{{Key: "poster", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("poster_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("status_expires"),
		},
		{
			Keys:    bson.D{{Key: "claimants.id", Value: 1}},
			Options: options.Index().SetName("claimant_id"),
		},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("title_description_text").SetWeights(bson.D{{Key: "title", Value: 3}, {Key: "description", Value: 1}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", ColItems, err)
	}

	_, err = s.configs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_key"),
		},
		{
			Keys:    bson.D{{Key: "isPublic", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetName("public_category"),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", ColConfigs, err)
	}

	utils.Info("mongo indexes ensured", map[string]any{"collections": []string{ColItems, ColConfigs}})
	return nil
}

// wrapError maps driver errors onto the service error taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}
	return err
}
