package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/pkg/pagination"
)

// ErrInvalidCursor wraps cursor decoding failures so callers can report them
// as bad input.
var ErrInvalidCursor = errors.New("invalid cursor")

// Scope narrows a query, e.g. by a foreign key or preload.
type Scope func(*gorm.DB) *gorm.DB

// Crud is the generic repository behind every admin-managed entity. Rows are
// listed most-recent first by id and paged with an opaque keyset cursor.
type Crud[T any] struct {
	Base
	idOf func(T) uint
}

// NewCrud binds a CRUD repository for T. idOf extracts the primary key.
func NewCrud[T any](db *gorm.DB, idOf func(T) uint) *Crud[T] {
	return &Crud[T]{Base: NewBase(db), idOf: idOf}
}

// WithTx rebinds the repository to a transaction.
func (r *Crud[T]) WithTx(tx *gorm.DB) *Crud[T] {
	if tx == nil {
		return r
	}
	return &Crud[T]{Base: NewBase(tx), idOf: r.idOf}
}

// List returns one page ordered by id descending.
func (r *Crud[T]) List(ctx context.Context, params pagination.Params, scopes ...Scope) (pagination.Page[T], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[T]{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	q := r.DB(ctx).Model(new(T))
	for _, scope := range scopes {
		q = scope(q)
	}
	if cursor != nil {
		q = q.Where("id < ?", cursor.ID)
	}

	var rows []T
	if err := q.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[T]{}, err
	}
	return pagination.Build(rows, params.Limit, r.idOf), nil
}

// All returns every row ordered by id descending.
func (r *Crud[T]) All(ctx context.Context, scopes ...Scope) ([]T, error) {
	q := r.DB(ctx).Model(new(T))
	for _, scope := range scopes {
		q = scope(q)
	}
	var rows []T
	if err := q.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one row. gorm.ErrRecordNotFound is returned unchanged.
func (r *Crud[T]) FindByID(ctx context.Context, id uint, scopes ...Scope) (*T, error) {
	q := r.DB(ctx)
	for _, scope := range scopes {
		q = scope(q)
	}
	var row T
	if err := q.First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Crud[T]) Create(ctx context.Context, row *T) error {
	return r.DB(ctx).Create(row).Error
}

// Save writes every column of row.
func (r *Crud[T]) Save(ctx context.Context, row *T) error {
	return r.DB(ctx).Save(row).Error
}

// Delete hard-deletes by id and reports gorm.ErrRecordNotFound when nothing
// matched.
func (r *Crud[T]) Delete(ctx context.Context, id uint) error {
	res := r.DB(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Crud[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	q := r.DB(ctx).Model(new(T))
	for _, scope := range scopes {
		q = scope(q)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Preload returns a scope that eager-loads the named association.
func Preload(assoc string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(assoc, args...) }
}

// Where returns a scope with an extra condition.
func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}
