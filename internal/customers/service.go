package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/internal/users"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/db"
	"github.com/emporium-dev/emporium/pkg/db/models"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
	"github.com/emporium-dev/emporium/pkg/security"
)

const (
	// TempPasswordLength is used when an admin creates an account without a password.
	TempPasswordLength = 12

	usernameTakenMessage = "Customer with this username already exists."
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ordersLister interface {
	ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error)
}

// AccountInput carries the identity and profile fields of a new customer.
type AccountInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Address  string
}

// Created is returned once per account creation. TempPassword is set only when
// the password was generated.
type Created struct {
	Customer     *models.Customer `json:"customer"`
	TempPassword string           `json:"temp_password,omitempty"`
}

type ProfileInput struct {
	FullName string
	Address  string
}

// Profile is the customer's own account page.
type Profile struct {
	Customer  *models.Customer `json:"customer"`
	Orders    []models.Order   `json:"orders"`
	Favorites []models.Product `json:"favorites"`
}

type Service interface {
	CreateAccount(ctx context.Context, input AccountInput) (*Created, error)
	Get(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, params pagination.Params) (pagination.Page[models.Customer], error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, id uint, input ProfileInput) (*models.Customer, error)
	Delete(ctx context.Context, id uint) error
	Profile(ctx context.Context, customerID uint) (*Profile, error)
	ToggleFavorite(ctx context.Context, customerID, productID uint) (bool, error)
}

// ServiceParams groups the collaborators of the customers service.
type ServiceParams struct {
	Customers *Repository
	Users     *users.Repository
	Tx        txRunner
	Orders    ordersLister
	Password  config.PasswordConfig
}

type service struct {
	customers *Repository
	users     *users.Repository
	tx        txRunner
	orders    ordersLister
	password  config.PasswordConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders lister required")
	}
	return &service{
		customers: params.Customers,
		users:     params.Users,
		tx:        params.Tx,
		orders:    params.Orders,
		password:  params.Password,
	}, nil
}

// CreateAccount persists the login identity and its customer profile together.
func (s *service) CreateAccount(ctx context.Context, input AccountInput) (*Created, error) {
	username := strings.TrimSpace(input.Username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "required"
	}
	if strings.TrimSpace(input.FullName) == "" {
		fields["full_name"] = "required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid account", fields)
	}

	password := input.Password
	var temp string
	if password == "" {
		generated, err := security.GenerateTempPassword(TempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password, temp = generated, generated
	}
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var customer *models.Customer
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		taken, err := userRepo.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return usernameTaken()
		}
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        input.Email,
			PasswordHash: hash,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return usernameTaken()
			}
			return err
		}
		customer = &models.Customer{
			UserID:   user.ID,
			FullName: strings.TrimSpace(input.FullName),
			Address:  strings.TrimSpace(input.Address),
		}
		if err := s.customers.WithTx(tx).Create(ctx, customer); err != nil {
			return err
		}
		customer.User = user
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return &Created{Customer: customer, TempPassword: temp}, nil
}

func usernameTaken() error {
	return pkgerrors.Validation(usernameTakenMessage, map[string]string{"username": "taken"})
}

func (s *service) Get(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, "customer", "load customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Customer], error) {
	page, err := s.customers.List(ctx, params)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCursor) {
			return page, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return page, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	return page, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	n, err := s.customers.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count customers")
	}
	return n, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uint, input ProfileInput) (*models.Customer, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.Validation("invalid profile", map[string]string{"full_name": "required"})
	}
	if err := s.customers.UpdateProfile(ctx, id, fullName, strings.TrimSpace(input.Address)); err != nil {
		return nil, mapErr(err, "customer", "update customer")
	}
	return s.Get(ctx, id)
}

// Delete removes the customer together with its login identity. Carts are
// kept for the orders that reference them.
func (s *service) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customers := s.customers.WithTx(tx)
		customer, err := customers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := customers.DeleteFavorites(ctx, id); err != nil {
			return err
		}
		if err := customers.DetachCarts(ctx, id); err != nil {
			return err
		}
		return s.users.WithTx(tx).Delete(ctx, customer.UserID)
	})
	if err != nil {
		return mapErr(err, "customer", "delete customer")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, customerID uint) (*Profile, error) {
	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.customers.Favorites(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favourites")
	}
	return &Profile{Customer: customer, Orders: orders, Favorites: favorites}, nil
}

// ToggleFavorite adds the product to the customer's favourites, or removes it
// when already present. It reports whether the product is now a favourite.
func (s *service) ToggleFavorite(ctx context.Context, customerID, productID uint) (bool, error) {
	var added bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customers := s.customers.WithTx(tx)
		if _, err := customers.FindByID(ctx, customerID); err != nil {
			return mapErr(err, "customer", "load customer")
		}
		product, err := customers.FindProduct(ctx, productID)
		if err != nil {
			return mapErr(err, "product", "load product")
		}
		exists, err := customers.IsFavorite(ctx, customerID, productID)
		if err != nil {
			return err
		}
		if exists {
			return customers.RemoveFavorite(ctx, customerID, product)
		}
		added = true
		return customers.AddFavorite(ctx, customerID, product)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return false, err
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle favourite")
	}
	return added, nil
}

func mapErr(err error, resource, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(resource)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
