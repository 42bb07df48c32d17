package lostfound

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/repository"
	"github.com/phillip/campus-services-go/utils"
)

const (
	DefaultTTL = 720 * time.Hour

	// PolicyKeyAutoRejectSiblings is the boolean config entry that overrides the sibling policy at runtime.
	PolicyKeyAutoRejectSiblings = "moderation.autoRejectSiblings"
)

// PolicySource resolves boolean settings; sysconfig.Service satisfies it.
type PolicySource interface {
	Bool(ctx context.Context, key string) (value bool, found bool, err error)
}

// Service owns the item record store, the claim sub-ledger and the moderation gateway.
type Service struct {
	store      repository.ItemStore
	events     notify.Publisher
	images     utils.ImageStore
	policy     PolicySource
	validate   *validator.Validate
	now        func() time.Time
	defaultTTL time.Duration
	autoReject bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithPublisher(p notify.Publisher) Option { return func(s *Service) { s.events = p } }

func WithImageStore(is utils.ImageStore) Option { return func(s *Service) { s.images = is } }

func WithDefaultTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// WithAutoRejectSiblings sets the default sibling policy. When src is non-nil its
// PolicyKeyAutoRejectSiblings entry wins whenever present.
func WithAutoRejectSiblings(on bool, src PolicySource) Option {
	return func(s *Service) {
		s.autoReject = on
		s.policy = src
	}
}

func NewService(store repository.ItemStore, opts ...Option) *Service {
	s := &Service{
		store:      store,
		events:     notify.NewNoop(),
		images:     utils.NoopImageStore{},
		validate:   utils.NewValidator(),
		now:        func() time.Time { return time.Now().UTC() },
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) autoRejectSiblings(ctx context.Context) bool {
	if s.policy == nil {
		return s.autoReject
	}
	v, found, err := s.policy.Bool(ctx, PolicyKeyAutoRejectSiblings)
	if err != nil {
		utils.Warn("sibling policy lookup failed, using default", map[string]any{
			"key":     PolicyKeyAutoRejectSiblings,
			"default": s.autoReject,
			"error":   err.Error(),
		})
		return s.autoReject
	}
	if !found {
		return s.autoReject
	}
	return v
}

// countConflict records lost revision races before handing the error back.
func countConflict(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		metrics.WriteConflicts.Inc()
	}
	return err
}
