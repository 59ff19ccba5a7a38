package users

import (
	"strings"
	"time"

	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	IsSuperuser  bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        RoleOf(u),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// RoleOf maps the superuser flag onto the role vocabulary.
func RoleOf(u *models.User) enums.Role {
	if u != nil && u.IsSuperuser {
		return enums.RoleAdmin
	}
	return enums.RoleCustomer
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     strings.TrimSpace(c.Username),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		IsSuperuser:  c.IsSuperuser,
	}
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
