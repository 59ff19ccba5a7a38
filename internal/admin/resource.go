package admin

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Form is a validated admin form that knows how to write itself onto a row.
// Apply replaces every editable field.
type Form[T any] interface {
	Apply(row *T)
}

// ref is a foreign key the form must point at.
type ref[T any] struct {
	field string
	model any
	id    func(*T) uint
}

// unique maps a unique constraint violation onto a form field. markers hold
// the constraint name as reported by postgres and by sqlite.
type unique struct {
	field   string
	message string
	markers []string
}

// Resource is the uniform list/create/update/delete surface for one entity.
type Resource[T any] struct {
	name    string
	crud    *repo.Crud[T]
	tx      txRunner
	scopes  []repo.Scope
	refs    []ref[T]
	uniques []unique
}

func newResource[T any](name string, conn *gorm.DB, tx txRunner, idOf func(T) uint) *Resource[T] {
	return &Resource[T]{name: name, crud: repo.NewCrud(conn, idOf), tx: tx}
}

func (r *Resource[T]) withScopes(scopes ...repo.Scope) *Resource[T] {
	r.scopes = append(r.scopes, scopes...)
	return r
}

func (r *Resource[T]) withRef(field string, model any, id func(*T) uint) *Resource[T] {
	r.refs = append(r.refs, ref[T]{field: field, model: model, id: id})
	return r
}

func (r *Resource[T]) withUnique(field, message string, markers ...string) *Resource[T] {
	r.uniques = append(r.uniques, unique{field: field, message: message, markers: markers})
	return r
}

// Name is the entity name used in messages and routes.
func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) List(ctx context.Context, params pagination.Params, scopes ...repo.Scope) (pagination.Page[T], error) {
	page, err := r.crud.List(ctx, params, append(append([]repo.Scope{}, r.scopes...), scopes...)...)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCursor) {
			return page, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return page, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list "+r.name)
	}
	return page, nil
}

func (r *Resource[T]) Get(ctx context.Context, id uint) (*T, error) {
	row, err := r.crud.FindByID(ctx, id, r.scopes...)
	if err != nil {
		return nil, r.mapErr(err, "load "+r.name)
	}
	return row, nil
}

func (r *Resource[T]) Count(ctx context.Context) (int64, error) {
	n, err := r.crud.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count "+r.name)
	}
	return n, nil
}

func (r *Resource[T]) Create(ctx context.Context, form Form[T]) (*T, error) {
	row := new(T)
	form.Apply(row)
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := r.checkRefs(ctx, tx, row); err != nil {
			return err
		}
		return r.crud.WithTx(tx).Create(ctx, row)
	})
	if err != nil {
		return nil, r.mapErr(err, "create "+r.name)
	}
	return row, nil
}

// Update loads the row, replaces its fields from form and saves every column.
func (r *Resource[T]) Update(ctx context.Context, id uint, form Form[T]) (*T, error) {
	var row *T
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		crud := r.crud.WithTx(tx)
		current, err := crud.FindByID(ctx, id)
		if err != nil {
			return err
		}
		form.Apply(current)
		if err := r.checkRefs(ctx, tx, current); err != nil {
			return err
		}
		row = current
		return crud.Save(ctx, current)
	})
	if err != nil {
		return nil, r.mapErr(err, "update "+r.name)
	}
	return row, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id uint) error {
	if err := r.crud.Delete(ctx, id); err != nil {
		return r.mapErr(err, "delete "+r.name)
	}
	return nil
}

func (r *Resource[T]) checkRefs(ctx context.Context, tx *gorm.DB, row *T) error {
	fields := map[string]string{}
	for _, ref := range r.refs {
		var n int64
		if err := tx.WithContext(ctx).Model(ref.model).Where("id = ?", ref.id(row)).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			fields[ref.field] = "does not exist"
		}
	}
	if len(fields) > 0 {
		return pkgerrors.Validation(fmt.Sprintf("invalid %s", r.name), fields)
	}
	return nil
}

func (r *Resource[T]) mapErr(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(r.name)
	}
	for _, u := range r.uniques {
		for _, marker := range u.markers {
			if db.IsUniqueViolation(err, marker) {
				return pkgerrors.Validation(u.message, map[string]string{u.field: u.message})
			}
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
