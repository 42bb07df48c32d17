package sysconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/repository"
	"github.com/phillip/campus-services-go/utils"
)

// Service exposes the config store: public entries to everyone, the full store to admins.
type Service struct {
	store    repository.ConfigStore
	cache    Cache
	events   notify.Publisher
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p notify.Publisher) Option { return func(s *Service) { s.events = p } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store repository.ConfigStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		cache:    NoopCache{},
		events:   notify.NewNoop(),
		validate: utils.NewValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPublic returns every isPublic entry. Cache failures fall through to the store.
func (s *Service) ListPublic(ctx context.Context) ([]models.SystemConfig, error) {
	cached, ok, err := s.cache.GetPublic(ctx)
	switch {
	case err != nil:
		metrics.ConfigCacheLookups.WithLabelValues("error").Inc()
		utils.Warn("public config cache read failed", map[string]any{"error": err.Error()})
	case ok:
		metrics.ConfigCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.ConfigCacheLookups.WithLabelValues("miss").Inc()
	}

	cfgs, err := s.store.ListConfigs(ctx, repository.ConfigFilter{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list public configs: %w", err)
	}
	if err := s.cache.SetPublic(ctx, cfgs); err != nil {
		utils.Warn("public config cache write failed", map[string]any{"error": err.Error()})
	}
	return cfgs, nil
}

func (s *Service) List(ctx context.Context, actor models.Actor, category models.ConfigCategory) ([]models.SystemConfig, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("list configs: %w", apperrors.ErrForbidden)
	}
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("list configs: %w", apperrors.Invalid("category", "oneof"))
	}
	cfgs, err := s.store.ListConfigs(ctx, repository.ConfigFilter{Category: category})
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return cfgs, nil
}

func (s *Service) Get(ctx context.Context, actor models.Actor, key string) (*models.SystemConfig, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("get config: %w", apperrors.ErrForbidden)
	}
	return s.store.GetConfig(ctx, key)
}

// Upsert validates draft and writes it, creating the key when absent.
func (s *Service) Upsert(ctx context.Context, actor models.Actor, draft models.ConfigDraft) (*models.SystemConfig, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("upsert config: %w", apperrors.ErrForbidden)
	}
	if draft.Category == "" {
		draft.Category = models.ConfigCategoryGeneral
	}
	if err := utils.ValidateStruct(s.validate, draft); err != nil {
		return nil, fmt.Errorf("upsert config: %w", err)
	}
	value, err := models.ParseConfigValue(draft.Type, draft.Value)
	if err != nil {
		return nil, fmt.Errorf("upsert config %q: %v: %w", draft.Key, err, apperrors.Invalid("value", "type"))
	}

	now := s.now()
	saved, err := s.store.UpsertConfig(ctx, &models.SystemConfig{
		Key:         draft.Key,
		Value:       value,
		Type:        draft.Type,
		Description: draft.Description,
		Category:    draft.Category,
		IsPublic:    draft.IsPublic,
		UpdatedBy:   actor.UserID,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert config: %w", err)
	}

	s.invalidate(ctx)
	notify.Emit(ctx, s.events, notify.KeyConfigChanged, notify.ConfigChanged{
		Key:        saved.Key,
		UpdatedBy:  actor.UserID,
		OccurredAt: now,
	})
	utils.Info("config saved", map[string]any{"key": saved.Key, "type": saved.Type, "updated_by": actor.UserID.Hex()})
	return saved, nil
}

// Delete removes key. Deleting an absent key reports false with no error.
func (s *Service) Delete(ctx context.Context, actor models.Actor, key string) (bool, error) {
	if !actor.IsAdmin() {
		return false, fmt.Errorf("delete config: %w", apperrors.ErrForbidden)
	}
	deleted, err := s.store.DeleteConfig(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete config: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.invalidate(ctx)
	notify.Emit(ctx, s.events, notify.KeyConfigChanged, notify.ConfigChanged{
		Key:        key,
		UpdatedBy:  actor.UserID,
		Deleted:    true,
		OccurredAt: s.now(),
	})
	utils.Info("config deleted", map[string]any{"key": key, "updated_by": actor.UserID.Hex()})
	return true, nil
}

// Bool reads a boolean entry. found is false when the key is absent.
func (s *Service) Bool(ctx context.Context, key string) (bool, bool, error) {
	cfg, err := s.store.GetConfig(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	v, ok := cfg.Value.AsBool()
	if !ok {
		return false, false, fmt.Errorf("config %q is %s, not boolean", key, cfg.Type)
	}
	return v, true, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePublic(ctx); err != nil {
		utils.Warn("public config cache invalidation failed", map[string]any{"error": err.Error()})
	}
}
