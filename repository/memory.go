package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of ItemStore and ConfigStore.
// It backs STORE_DRIVER=memory and the service tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	items   map[primitive.ObjectID]*models.Item
	configs map[string]*models.SystemConfig
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items:   make(map[primitive.ObjectID]*models.Item),
		configs: make(map[string]*models.SystemConfig),
	}
}

// Ping always succeeds; the data lives in process.
func (r *MemoryRepo) Ping(context.Context) error { return nil }

func cloneItem(it *models.Item) *models.Item {
	out := *it
	out.Images = append([]string(nil), it.Images...)
	out.Uploads = append([]string(nil), it.Uploads...)
	out.Descriptor.Characteristics = append([]string(nil), it.Descriptor.Characteristics...)
	out.Claimants = make([]models.Claimant, len(it.Claimants))
	for i, c := range it.Claimants {
		c.ProofImages = append([]string(nil), c.ProofImages...)
		c.Uploads = append([]string(nil), c.Uploads...)
		out.Claimants[i] = c
	}
	return &out
}

func (r *MemoryRepo) InsertItem(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("insert item %s: %w", item.ID.Hex(), apperrors.ErrConflict)
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *MemoryRepo) GetItem(_ context.Context, id primitive.ObjectID) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("get item %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return cloneItem(it), nil
}

func matchesQuery(it *models.Item, q models.ItemQuery, terms []string, now time.Time) bool {
	if q.Type != "" && it.Type != q.Type {
		return false
	}
	if q.Category != "" && it.Category != q.Category {
		return false
	}
	if !q.Poster.IsZero() && it.Poster != q.Poster {
		return false
	}
	if q.Status != "" && it.EffectiveStatus(now) != q.Status {
		return false
	}
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(it.Title + " " + it.Description)
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// FindItems matches any search term as a case-insensitive substring of title or description.
func (r *MemoryRepo) FindItems(_ context.Context, q models.ItemQuery, now time.Time) ([]models.Item, int64, error) {
	q = q.Normalize()
	terms := q.Terms()

	r.mu.RLock()
	matched := make([]*models.Item, 0, len(r.items))
	for _, it := range r.items {
		if matchesQuery(it, q, terms, now) {
			matched = append(matched, cloneItem(it))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch q.Sort {
		case models.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID.Hex() < b.ID.Hex()
		case models.SortViews:
			if a.Stats.Views != b.Stats.Views {
				return a.Stats.Views > b.Stats.Views
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	})

	total := int64(len(matched))
	skip := q.Skip()
	if skip < 0 {
		skip = 0
	}
	if skip > total {
		skip = total
	}
	start := int(skip)
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Item, 0, end-start)
	for _, it := range matched[start:end] {
		out = append(out, *it)
	}
	return out, total, nil
}

func (r *MemoryRepo) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return fmt.Errorf("increment views %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	it.Stats.Views++
	return nil
}

func (r *MemoryRepo) AppendClaimant(_ context.Context, id primitive.ObjectID, claimant models.Claimant, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return fmt.Errorf("append claimant to %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if status := it.EffectiveStatus(now); status != models.ItemStatusActive {
		return fmt.Errorf("append claimant to %s: %w", id.Hex(), apperrors.InvalidState("item is %s", status))
	}

	claimant.ProofImages = append([]string(nil), claimant.ProofImages...)
	it.Claimants = append(it.Claimants, claimant)
	it.Stats.Claims++
	it.Revision++
	it.UpdatedAt = now
	return nil
}

func (r *MemoryRepo) ReplaceItem(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("replace item %s: %w", item.ID.Hex(), apperrors.ErrNotFound)
	}
	if stored.Revision != item.Revision {
		return fmt.Errorf("replace item %s at revision %d: %w", item.ID.Hex(), item.Revision, apperrors.ErrConflict)
	}

	item.Revision++
	next := cloneItem(item)
	// views are only ever moved by IncrementViews
	next.Stats.Views = stored.Stats.Views
	r.items[item.ID] = next
	return nil
}

func (r *MemoryRepo) DeleteItem(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *MemoryRepo) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, it := range r.items {
		if it.Status == models.ItemStatusActive && !now.Before(it.ExpiresAt) {
			it.Status = models.ItemStatusExpired
			it.Revision++
			it.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func cloneConfig(c *models.SystemConfig) *models.SystemConfig {
	out := *c
	return &out
}

func (r *MemoryRepo) GetConfig(_ context.Context, key string) (*models.SystemConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configs[key]
	if !ok {
		return nil, fmt.Errorf("get config %q: %w", key, apperrors.ErrNotFound)
	}
	return cloneConfig(c), nil
}

func (r *MemoryRepo) ListConfigs(_ context.Context, filter ConfigFilter) ([]models.SystemConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.SystemConfig, 0, len(r.configs))
	for _, c := range r.configs {
		if filter.PublicOnly && !c.IsPublic {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *MemoryRepo) UpsertConfig(_ context.Context, cfg *models.SystemConfig) (*models.SystemConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneConfig(cfg)
	if existing, ok := r.configs[cfg.Key]; ok {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	} else {
		next.ID = primitive.NewObjectID()
		next.CreatedAt = cfg.UpdatedAt
	}
	r.configs[cfg.Key] = next
	return cloneConfig(next), nil
}

func (r *MemoryRepo) DeleteConfig(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[key]; !ok {
		return false, nil
	}
	delete(r.configs, key)
	return true, nil
}
