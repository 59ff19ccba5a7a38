package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

type statusRecorder interface {
	StatusChanged(status enums.OrderStatus)
}

// Service defines the order workflow used by the admin console and profile.
type Service interface {
	SetStatus(ctx context.Context, orderID uint, status string) (*models.Order, error)
	Detail(ctx context.Context, orderID uint) (*models.Order, error)
	List(ctx context.Context, params pagination.Params) (pagination.Page[models.Order], error)
	ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error)
	Pending(ctx context.Context, limit int) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, orderID uint) error
}

type service struct {
	repo    Repository
	metrics statusRecorder
}

// NewService wires the order service.
func NewService(repo Repository, metrics statusRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &service{repo: repo, metrics: metrics}, nil
}

type noopRecorder struct{}

func (noopRecorder) StatusChanged(enums.OrderStatus) {}

// SetStatus overwrites the order status with any value of the vocabulary,
// whatever the current status is.
func (s *service) SetStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.Validation("invalid order status", map[string]string{"status": err.Error()})
	}
	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, mapErr(err, "update order status")
	}
	s.metrics.StatusChanged(next)
	return s.Detail(ctx, orderID)
}

func (s *service) Detail(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.repo.FindDetail(ctx, orderID)
	if err != nil {
		return nil, mapErr(err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Order], error) {
	page, err := s.repo.List(ctx, params)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCursor) {
			return page, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return page, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return page, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	rows, err := s.repo.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customer orders")
	}
	return rows, nil
}

// Pending lists orders still waiting for the admin, newest first.
func (s *service) Pending(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := s.repo.ListByStatus(ctx, enums.OrderStatusReceived, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending orders")
	}
	return rows, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, orderID uint) error {
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return mapErr(err, "delete order")
	}
	return nil
}

func mapErr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound("order")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
