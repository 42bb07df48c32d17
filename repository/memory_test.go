package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/models"
)

var (
	_ ItemStore   = (*MemoryRepo)(nil)
	_ ConfigStore = (*MemoryRepo)(nil)
	_ ItemStore   = (*MongoStore)(nil)
	_ ConfigStore = (*MongoStore)(nil)
)

func newItem(title string, typ models.ItemType, created time.Time) *models.Item {
	return &models.Item{
		Title:       title,
		Description: "left near the library",
		Type:        typ,
		Category:    models.CategoryBags,
		Status:      models.ItemStatusActive,
		Poster:      primitive.NewObjectID(),
		Contact:     models.Contact{Name: "Lin", Phone: "13800000000"},
		ExpiresAt:   created.Add(24 * time.Hour),
		Revision:    1,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func newClaimant() models.Claimant {
	return models.Claimant{
		ID:          uuid.NewString(),
		User:        primitive.NewObjectID(),
		Description: "it has my name inside",
		Status:      models.ClaimStatusPending,
	}
}

func TestMemoryRepo_InsertAndGet(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	it := newItem("Blue backpack", models.ItemTypeLost, now)
	require.NoError(t, repo.InsertItem(ctx, it))
	require.False(t, it.ID.IsZero())

	got, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, "Blue backpack", got.Title)

	// returned copies are detached from the stored document
	got.Title = "changed"
	again, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, "Blue backpack", again.Title)

	require.ErrorIs(t, repo.InsertItem(ctx, it), apperrors.ErrConflict)

	_, err = repo.GetItem(ctx, primitive.NewObjectID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryRepo_FindItems(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	older := newItem("Black backpack", models.ItemTypeLost, base)
	newer := newItem("Grey Backpack", models.ItemTypeLost, base.Add(time.Minute))
	found := newItem("Backpack at gym", models.ItemTypeFound, base.Add(2*time.Minute))
	keys := newItem("Keys", models.ItemTypeLost, base.Add(3*time.Minute))
	stale := newItem("Old backpack", models.ItemTypeLost, base.Add(4*time.Minute))
	stale.ExpiresAt = base
	resolved := newItem("Resolved backpack", models.ItemTypeLost, base.Add(5*time.Minute))
	resolved.Status = models.ItemStatusResolved

	for _, it := range []*models.Item{older, newer, found, keys, stale, resolved} {
		require.NoError(t, repo.InsertItem(ctx, it))
	}

	now := time.Now().UTC()

	tests := []struct {
		name    string
		query   models.ItemQuery
		want    []primitive.ObjectID
		wantTot int64
	}{
		{
			name:    "active_lost_backpack_newest_first",
			query:   models.ItemQuery{Type: models.ItemTypeLost, Status: models.ItemStatusActive, Text: "backpack"},
			want:    []primitive.ObjectID{newer.ID, older.ID},
			wantTot: 2,
		},
		{
			name:    "expired_includes_stale_active",
			query:   models.ItemQuery{Status: models.ItemStatusExpired},
			want:    []primitive.ObjectID{stale.ID},
			wantTot: 1,
		},
		{
			name:    "oldest_first_with_paging",
			query:   models.ItemQuery{Sort: models.SortOldest, Limit: 2, Page: 2},
			want:    []primitive.ObjectID{found.ID, keys.ID},
			wantTot: 6,
		},
		{
			name:    "page_past_end",
			query:   models.ItemQuery{Page: 10},
			want:    []primitive.ObjectID{},
			wantTot: 6,
		},
		{
			name:    "huge_page_is_empty",
			query:   models.ItemQuery{Page: 922337203685477581},
			want:    []primitive.ObjectID{},
			wantTot: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.FindItems(ctx, tt.query, now)
			require.NoError(t, err)
			require.Equal(t, tt.wantTot, total)

			ids := make([]primitive.ObjectID, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestMemoryRepo_SortByViews(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	a := newItem("a", models.ItemTypeLost, now.Add(-2*time.Minute))
	b := newItem("b", models.ItemTypeLost, now.Add(-time.Minute))
	require.NoError(t, repo.InsertItem(ctx, a))
	require.NoError(t, repo.InsertItem(ctx, b))
	require.NoError(t, repo.IncrementViews(ctx, a.ID))

	items, _, err := repo.FindItems(ctx, models.ItemQuery{Sort: models.SortViews}, now)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, a.ID, items[0].ID)
	require.EqualValues(t, 1, items[0].Stats.Views)
}

func TestMemoryRepo_IncrementViewsConcurrent(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	it := newItem("Umbrella", models.ItemTypeFound, time.Now().UTC())
	require.NoError(t, repo.InsertItem(ctx, it))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementViews(ctx, it.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.EqualValues(t, 50, got.Stats.Views)
	require.EqualValues(t, 1, got.Revision)
	require.Equal(t, models.ItemStatusActive, got.Status)

	require.ErrorIs(t, repo.IncrementViews(ctx, primitive.NewObjectID()), apperrors.ErrNotFound)
}

func TestMemoryRepo_AppendClaimant(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	it := newItem("Wallet", models.ItemTypeFound, now)
	require.NoError(t, repo.InsertItem(ctx, it))

	require.NoError(t, repo.AppendClaimant(ctx, it.ID, newClaimant(), now))
	require.NoError(t, repo.AppendClaimant(ctx, it.ID, newClaimant(), now))

	got, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, got.Claimants, 2)
	require.EqualValues(t, 2, got.Stats.Claims)
	require.EqualValues(t, 3, got.Revision)

	// past the deadline nothing is appended
	late := it.ExpiresAt.Add(time.Second)
	err = repo.AppendClaimant(ctx, it.ID, newClaimant(), late)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)

	got, err = repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, got.Claimants, 2)
	require.EqualValues(t, 2, got.Stats.Claims)

	err = repo.AppendClaimant(ctx, primitive.NewObjectID(), newClaimant(), now)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryRepo_ReplaceItemRevision(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	it := newItem("Laptop", models.ItemTypeLost, now)
	require.NoError(t, repo.InsertItem(ctx, it))

	first, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	second, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)

	require.NoError(t, repo.IncrementViews(ctx, it.ID))

	first.Title = "Silver laptop"
	require.NoError(t, repo.ReplaceItem(ctx, first))
	require.EqualValues(t, 2, first.Revision)

	second.Title = "Black laptop"
	require.ErrorIs(t, repo.ReplaceItem(ctx, second), apperrors.ErrConflict)

	got, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, "Silver laptop", got.Title)
	require.EqualValues(t, 1, got.Stats.Views, "views survive a replace")

	missing := newItem("ghost", models.ItemTypeLost, now)
	missing.ID = primitive.NewObjectID()
	require.ErrorIs(t, repo.ReplaceItem(ctx, missing), apperrors.ErrNotFound)
}

func TestMemoryRepo_DeleteAndSweep(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	live := newItem("Card", models.ItemTypeFound, now)
	stale := newItem("Scarf", models.ItemTypeFound, now.Add(-48*time.Hour))
	done := newItem("Book", models.ItemTypeFound, now.Add(-48*time.Hour))
	done.Status = models.ItemStatusResolved
	for _, it := range []*models.Item{live, stale, done} {
		require.NoError(t, repo.InsertItem(ctx, it))
	}

	n, err := repo.SweepExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := repo.GetItem(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusExpired, got.Status)
	require.EqualValues(t, 2, got.Revision)

	got, err = repo.GetItem(ctx, done.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusResolved, got.Status)

	deleted, err := repo.DeleteItem(ctx, live.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.DeleteItem(ctx, live.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestMemoryRepo_Configs(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	t0 := time.Now().UTC()

	saved, err := repo.UpsertConfig(ctx, &models.SystemConfig{
		Key:       "site.name",
		Value:     models.StringValue("Campus"),
		Type:      models.ConfigTypeString,
		Category:  models.ConfigCategoryGeneral,
		IsPublic:  true,
		UpdatedAt: t0,
	})
	require.NoError(t, err)
	require.False(t, saved.ID.IsZero())
	require.Equal(t, t0, saved.CreatedAt)

	_, err = repo.UpsertConfig(ctx, &models.SystemConfig{
		Key:       "moderation.autoRejectSiblings",
		Value:     models.BoolValue(true),
		Type:      models.ConfigTypeBoolean,
		Category:  models.ConfigCategoryFeature,
		UpdatedAt: t0,
	})
	require.NoError(t, err)

	t1 := t0.Add(time.Minute)
	updated, err := repo.UpsertConfig(ctx, &models.SystemConfig{
		Key:       "site.name",
		Value:     models.StringValue("Campus Services"),
		Type:      models.ConfigTypeString,
		Category:  models.ConfigCategoryGeneral,
		IsPublic:  true,
		UpdatedAt: t1,
	})
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, t0, updated.CreatedAt)
	require.Equal(t, t1, updated.UpdatedAt)

	public, err := repo.ListConfigs(ctx, ConfigFilter{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 1)
	s, ok := public[0].Value.AsString()
	require.True(t, ok)
	require.Equal(t, "Campus Services", s)

	all, err := repo.ListConfigs(ctx, ConfigFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "moderation.autoRejectSiblings", all[0].Key)

	features, err := repo.ListConfigs(ctx, ConfigFilter{Category: models.ConfigCategoryFeature})
	require.NoError(t, err)
	require.Len(t, features, 1)

	deleted, err := repo.DeleteConfig(ctx, "site.name")
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repo.GetConfig(ctx, "site.name")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
