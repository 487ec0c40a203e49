package leveldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	apperrors "clothing-api/pkg/errors"
)

func newTestRepository(t *testing.T) (*ClothingRepository, *leveldb.DB) {
	t.Helper()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	current := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
	return NewClothingRepository(db, zap.NewNop(), WithClock(clock)), db
}

func TestCreate_StoresJSONUnderPrefixedKey(t *testing.T) {
	repo, db := newTestRepository(t)

	item, err := repo.Create(context.Background(), entities.Payload{
		"name": "Cardigan", "brand": "Acme", "size": "S", "color": "grey", "price": 0.0, "notes": "",
	})
	require.NoError(t, err)

	raw, err := db.Get([]byte("clothing#"+item.ID), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "`+item.ID+`",
		"name": "Cardigan",
		"brand": "Acme",
		"size": "S",
		"color": "grey",
		"price": 0,
		"wishlist": false,
		"createdAt": "2024-05-01T10:00:00.001Z",
		"updatedAt": "2024-05-01T10:00:00.001Z"
	}`, string(raw))
}

func TestLifecycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	// Create then read back
	created, err := repo.Create(ctx, entities.Payload{"name": "Parka", "brand": "Acme", "price": 300.0})
	require.NoError(t, err)
	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	// Partial update leaves other fields alone
	updated, err := repo.Update(ctx, created.ID, entities.Payload{"price": 10.0, "wishlist": 1.0})
	require.NoError(t, err)
	assert.Equal(t, 10.0, *updated.Price)
	assert.True(t, updated.Wishlist)
	assert.Equal(t, "Parka", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, created.UpdatedAt)

	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, found)

	// Delete twice
	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)
	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUpdate_Failures(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Update(ctx, "ghost", entities.Payload{"name": "x"})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.Update(ctx, "ghost", entities.Payload{"unknown": "x"})
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = repo.Update(ctx, "ghost", entities.Payload{"price": "free"})
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.Equal(t, "Invalid price value", apperrors.GetAppError(err).Message)

	_, err = repo.Update(ctx, "", entities.Payload{"name": "x"})
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestFindAll_PagesThroughPrefixOnly(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		_, err := repo.Create(ctx, entities.Payload{"name": "item"})
		require.NoError(t, err)
	}
	// Keys outside the prefix are never returned
	require.NoError(t, db.Put([]byte("other#x"), []byte("{}"), nil))
	require.NoError(t, db.Put([]byte("clothinh"), []byte("{}"), nil))

	items, err := repo.FindAll(ctx, ports.FindAllOptions{LimitPerPage: 100})
	require.NoError(t, err)
	assert.Len(t, items, 250)

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item.ID] = struct{}{}
	}
	assert.Len(t, seen, 250)

	// Exact multiple of the page size ends with an empty page
	items, err = repo.FindAll(ctx, ports.FindAllOptions{LimitPerPage: 125})
	require.NoError(t, err)
	assert.Len(t, items, 250)
}

func TestFindAll_CorruptRecordIsStoreReadError(t *testing.T) {
	repo, db := newTestRepository(t)
	require.NoError(t, db.Put([]byte("clothing#bad"), []byte("not json"), nil))

	items, err := repo.FindAll(context.Background(), ports.FindAllOptions{})

	assert.Nil(t, items)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStoreRead))
}
