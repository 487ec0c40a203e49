package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/domain/core/valueobjects"
	"clothing-api/infrastructure/persistence/abstractions"
	apperrors "clothing-api/pkg/errors"
	"clothing-api/pkg/utils"
)

// KeyPrefix namespaces clothing records inside the database.
const KeyPrefix = "clothing#"

// Open opens (or creates) an on-disk database at path.
func Open(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb at %s: %w", path, err)
	}
	return db, nil
}

// ClothingRepository implements ports.ClothingRepository on an embedded
// LevelDB. Records are JSON documents keyed "clothing#<id>".
type ClothingRepository struct {
	db     *leveldb.DB
	logger *zap.Logger
	now    func() time.Time

	// mu serializes read-modify-write sequences.
	mu sync.Mutex
}

// Option customizes a ClothingRepository
type Option func(*ClothingRepository)

// WithClock replaces the time source used for createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(r *ClothingRepository) { r.now = now }
}

// NewClothingRepository creates a repository over an open database.
func NewClothingRepository(db *leveldb.DB, logger *zap.Logger, opts ...Option) *ClothingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ClothingRepository{db: db, logger: logger, now: utils.MonotonicClock(time.Now)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.ClothingRepository = (*ClothingRepository)(nil)

func itemKey(id string) []byte {
	return []byte(KeyPrefix + id)
}

// Create stores a new record unless the key is already taken.
func (r *ClothingRepository) Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error) {
	fields, err := entities.Sanitize(data)
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}

	id := valueobjects.NewItemID().String()
	item := entities.NewClothingItem(id, fields, utils.FormatISO(r.now()))

	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.db.Has(itemKey(id), nil)
	if err == nil && exists {
		err = fmt.Errorf("key %s already exists", itemKey(id))
	}
	if err == nil {
		err = r.put(item)
	}
	if err != nil {
		return nil, apperrors.NewStoreWriteError("creating clothing item", id, err)
	}

	r.logger.Debug("Clothing item created", zap.String("itemID", id))
	return item, nil
}

// FindAll iterates the prefix in pages; the last key read is the
// continuation token.
func (r *ClothingRepository) FindAll(ctx context.Context, opts ports.FindAllOptions) ([]*entities.ClothingItem, error) {
	prefix := util.BytesPrefix([]byte(KeyPrefix))

	items, err := abstractions.CollectPages(ctx, opts.PageSize(), func(ctx context.Context, token string, limit int) ([]*entities.ClothingItem, string, error) {
		rng := &util.Range{Start: prefix.Start, Limit: prefix.Limit}
		if token != "" {
			// smallest key strictly after the token
			rng.Start = append([]byte(token), 0)
		}

		iter := r.db.NewIterator(rng, nil)
		defer iter.Release()

		page := make([]*entities.ClothingItem, 0, limit)
		last := ""
		for len(page) < limit && iter.Next() {
			var item entities.ClothingItem
			if err := json.Unmarshal(iter.Value(), &item); err != nil {
				return nil, "", fmt.Errorf("decoding %s: %w", iter.Key(), err)
			}
			page = append(page, &item)
			last = string(iter.Key())
		}
		if err := iter.Error(); err != nil {
			return nil, "", err
		}

		if len(page) < limit {
			return page, "", nil
		}
		return page, last, nil
	})
	if err != nil {
		return nil, apperrors.NewStoreReadError("scanning clothing items", "", err)
	}
	return items, nil
}

// FindByID returns nil, nil for an empty id or a missing key.
func (r *ClothingRepository) FindByID(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, nil
	}

	item, err := r.get(id)
	if err != nil {
		return nil, apperrors.NewStoreReadError("getting clothing item", id, err)
	}
	return item, nil
}

// Update applies the plan to the stored record. LevelDB has no conditional
// writes, so existence is checked under the repository lock.
func (r *ClothingRepository) Update(ctx context.Context, id string, data entities.Payload) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, abstractions.MissingID()
	}

	fields, err := entities.Sanitize(data)
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}
	plan, err := abstractions.BuildUpdatePlan(fields, utils.FormatISO(r.now()))
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.get(id)
	if err != nil {
		return nil, apperrors.NewStoreWriteError("updating clothing item", id, err)
	}
	if item == nil {
		return nil, abstractions.NotFound(id)
	}

	for _, a := range plan.Assignments {
		if a.Field == entities.FieldUpdatedAt {
			item.UpdatedAt = a.Value.(string)
			continue
		}
		item.Apply(entities.FieldSet{a.Field: a.Value})
	}

	if err := r.put(item); err != nil {
		return nil, apperrors.NewStoreWriteError("updating clothing item", id, err)
	}

	r.logger.Debug("Clothing item updated",
		zap.String("itemID", id),
		zap.Strings("fields", plan.Fields()),
	)
	return item, nil
}

// Delete removes the key and returns the prior record, or nil.
func (r *ClothingRepository) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, abstractions.MissingID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.get(id)
	if err == nil && item != nil {
		err = r.db.Delete(itemKey(id), nil)
	}
	if err != nil {
		return nil, apperrors.NewStoreWriteError("deleting clothing item", id, err)
	}
	return item, nil
}

// get returns nil, nil when the key does not exist.
func (r *ClothingRepository) get(id string) (*entities.ClothingItem, error) {
	raw, err := r.db.Get(itemKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var item entities.ClothingItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", itemKey(id), err)
	}
	return &item, nil
}

func (r *ClothingRepository) put(item *entities.ClothingItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.db.Put(itemKey(item.ID), raw, nil)
}
