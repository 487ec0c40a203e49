package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/domain/core/valueobjects"
	"clothing-api/infrastructure/persistence/abstractions"
	apperrors "clothing-api/pkg/errors"
	"clothing-api/pkg/utils"
)

// columns lists the table columns in scan order.
var columns = []string{
	"id", "name", "brand", "size", "color", "price", "wishlist",
	"notes", "link", "reference", "created_at", "updated_at",
}

// column maps an item attribute to its column.
func column(field string) string {
	switch field {
	case entities.FieldCreatedAt:
		return "created_at"
	case entities.FieldUpdatedAt:
		return "updated_at"
	default:
		return field
	}
}

// ClothingRepository implements ports.ClothingRepository on database/sql.
type ClothingRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a ClothingRepository
type Option func(*ClothingRepository)

// WithClock replaces the time source used for createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(r *ClothingRepository) { r.now = now }
}

// NewClothingRepository creates a repository over an open database.
func NewClothingRepository(db *sql.DB, table string, logger *zap.Logger, opts ...Option) *ClothingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ClothingRepository{db: db, table: table, logger: logger, now: utils.MonotonicClock(time.Now)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.ClothingRepository = (*ClothingRepository)(nil)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *ClothingRepository) selectByID() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(columns, ", "), r.table)
}

// Create inserts a new row. The primary key rejects a reused id.
func (r *ClothingRepository) Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error) {
	fields, err := entities.Sanitize(data)
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}

	id := valueobjects.NewItemID().String()
	item := entities.NewClothingItem(id, fields, utils.FormatISO(r.now()))

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(columns, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
	if _, err := r.db.ExecContext(ctx, query, rowValues(item)...); err != nil {
		return nil, apperrors.NewStoreWriteError("creating clothing item", id, err)
	}

	r.logger.Debug("Clothing item created", zap.String("itemID", id))
	return item, nil
}

// FindAll walks the table in primary key order using keyset pagination.
func (r *ClothingRepository) FindAll(ctx context.Context, opts ports.FindAllOptions) ([]*entities.ClothingItem, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id > ? ORDER BY id LIMIT ?", strings.Join(columns, ", "), r.table)

	items, err := abstractions.CollectPages(ctx, opts.PageSize(), func(ctx context.Context, token string, limit int) ([]*entities.ClothingItem, string, error) {
		rows, err := r.db.QueryContext(ctx, query, token, limit)
		if err != nil {
			return nil, "", err
		}
		defer rows.Close()

		page := make([]*entities.ClothingItem, 0, limit)
		for rows.Next() {
			item, err := scanItem(rows)
			if err != nil {
				return nil, "", err
			}
			page = append(page, item)
		}
		if err := rows.Err(); err != nil {
			return nil, "", err
		}

		if len(page) < limit {
			return page, "", nil
		}
		return page, page[len(page)-1].ID, nil
	})
	if err != nil {
		return nil, apperrors.NewStoreReadError("scanning clothing items", "", err)
	}
	return items, nil
}

// FindByID returns nil, nil for an empty id or a missing row.
func (r *ClothingRepository) FindByID(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, nil
	}

	item, err := r.load(ctx, r.db, id)
	if err != nil {
		return nil, apperrors.NewStoreReadError("getting clothing item", id, err)
	}
	return item, nil
}

// Update runs the plan and reads the row back inside one transaction.
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

	set, args := plan.SQLSet(column)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.table, set)

	var item *entities.ClothingItem
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, append(args, id)...); err != nil {
			return err
		}
		item, err = r.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreWriteError("updating clothing item", id, err)
	}
	if item == nil {
		return nil, abstractions.NotFound(id)
	}

	r.logger.Debug("Clothing item updated",
		zap.String("itemID", id),
		zap.Strings("fields", plan.Fields()),
	)
	return item, nil
}

// Delete reads and removes the row inside one transaction and returns its
// prior state.
func (r *ClothingRepository) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, abstractions.MissingID()
	}

	var item *entities.ClothingItem
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = r.load(ctx, tx, id)
		if err != nil || item == nil {
			return err
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table), id)
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreWriteError("deleting clothing item", id, err)
	}

	if item != nil {
		r.logger.Debug("Clothing item deleted", zap.String("itemID", id))
	}
	return item, nil
}

// load returns nil, nil when no row matches.
func (r *ClothingRepository) load(ctx context.Context, q queryer, id string) (*entities.ClothingItem, error) {
	item, err := scanItem(q.QueryRowContext(ctx, r.selectByID(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *ClothingRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(s scanner) (*entities.ClothingItem, error) {
	var item entities.ClothingItem
	var name, brand, size, color, notes, link, reference sql.NullString
	var price sql.NullFloat64
	err := s.Scan(&item.ID, &name, &brand, &size, &color, &price, &item.Wishlist,
		&notes, &link, &reference, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.Name = name.String
	item.Brand = brand.String
	item.Size = size.String
	item.Color = color.String
	item.Notes = notes.String
	item.Link = link.String
	item.Reference = reference.String
	if price.Valid {
		p := price.Float64
		item.Price = &p
	}
	return &item, nil
}

// rowValues returns insert arguments in column order. Unset optionals are
// written as NULL.
func rowValues(item *entities.ClothingItem) []interface{} {
	var price interface{}
	if item.Price != nil {
		price = *item.Price
	}
	return []interface{}{
		item.ID,
		nullable(item.Name),
		nullable(item.Brand),
		nullable(item.Size),
		nullable(item.Color),
		price,
		item.Wishlist,
		nullable(item.Notes),
		nullable(item.Link),
		nullable(item.Reference),
		item.CreatedAt,
		item.UpdatedAt,
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
