package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/internal/users"
	pkgAuth "github.com/emporium-dev/emporium/pkg/auth"
	"github.com/emporium-dev/emporium/pkg/auth/session"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/db/models"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/mailer"
	"github.com/emporium-dev/emporium/pkg/security"
)

const (
	invalidCredentialsMessage = "Invalid credentials"
	unknownUsernameMessage    = "User with this username does not exist."
	unknownEmailMessage       = "Customer with this email does not exist."

	// AdminHome is where superusers land after login.
	AdminHome = "/admin-home/"
	// LoginPath is where a completed password reset sends the user.
	LoginPath = "/login/"
	// ForgotPasswordPath receives users holding an invalid reset link.
	ForgotPasswordPath = "/forgot-password"

	resetMailSubject = "Password Reset Link | Emporium"
)

// ErrInvalidResetLink is returned for expired, tampered or already used links.
var ErrInvalidResetLink = pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired password reset link")

// Service defines the account lifecycle used by the auth controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	CheckResetLink(ctx context.Context, email, token string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

type accountCreator interface {
	CreateAccount(ctx context.Context, input customers.AccountInput) (*customers.Created, error)
}

type sessionManager interface {
	Open(ctx context.Context, accessID string, userID uint) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Accounts       accountCreator
	SessionManager sessionManager
	Mailer         mailer.Mailer
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	BaseURL        string
}

type service struct {
	users       userRepository
	accounts    accountCreator
	session     sessionManager
	mail        mailer.Mailer
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	baseURL     string
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account creator is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &service{
		users:       params.UserRepo,
		accounts:    params.Accounts,
		session:     params.SessionManager,
		mail:        params.Mailer,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		baseURL:     strings.TrimRight(params.BaseURL, "/"),
	}, nil
}

// Register creates the identity and customer profile and logs the user in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	if req.Password == "" {
		return nil, pkgerrors.Validation("invalid registration", map[string]string{"password": "required"})
	}
	created, err := s.accounts.CreateAccount(ctx, customers.AccountInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Address:  req.Address,
	})
	if err != nil {
		return nil, err
	}
	user := created.Customer.User
	user.Customer = created.Customer
	return s.issue(ctx, user, SafeNext(req.Next))
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	redirect := SafeNext(req.Next)
	switch {
	case user.IsSuperuser:
		redirect = AdminHome
	case user.Customer == nil:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return s.issue(ctx, user, redirect)
}

// Logout revokes the server-side session so the token stops authenticating.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// ForgotPassword mails a reset link to the customer owning the address.
func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return pkgerrors.Validation("invalid email", map[string]string{"email": "required"})
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user == nil || user.Customer == nil {
		return pkgerrors.Validation(unknownEmailMessage, map[string]string{"email": unknownEmailMessage})
	}

	token, err := pkgAuth.MintResetToken(s.jwtCfg, time.Now().UTC(), resetSubject(user))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint reset token")
	}
	msg := mailer.Message{
		To:      user.Email,
		Subject: resetMailSubject,
		Body:    "Please click the link below to reset your password.\n\n" + ResetLink(s.baseURL, user.Email, token) + "\n",
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reset email")
	}
	return nil
}

// CheckResetLink validates the link before the reset form is shown.
func (s *service) CheckResetLink(ctx context.Context, email, token string) error {
	_, err := s.resolveReset(ctx, email, token)
	return err
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.NewPassword == "" {
		return pkgerrors.Validation("invalid password", map[string]string{"new_password": "required"})
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return pkgerrors.Validation("passwords do not match", map[string]string{"confirm_new_password": "must match new_password"})
	}
	user, err := s.resolveReset(ctx, req.Email, req.Token)
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

func (s *service) resolveReset(ctx context.Context, email, token string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(token) == "" {
		return nil, ErrInvalidResetLink
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetLink
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if err := pkgAuth.VerifyResetToken(s.jwtCfg, token, resetSubject(user)); err != nil {
		if errors.Is(err, pkgAuth.ErrInvalidResetToken) {
			return nil, ErrInvalidResetLink
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify reset token")
	}
	return user, nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	input := strings.TrimSpace(username)
	if input == "" {
		return nil, pkgerrors.Validation("invalid credentials", map[string]string{"username": "required"})
	}
	user, err := s.users.FindByUsername(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Validation(unknownUsernameMessage, map[string]string{"username": unknownUsernameMessage})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil && !errors.Is(err, security.ErrInvalidHash) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if security.NeedsRehash(user.PasswordHash, s.passwordCfg) {
		hash, err := security.HashPassword(password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rehash password")
		}
		if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store rehashed password")
		}
		user.PasswordHash = hash
	}
	return user, nil
}

func (s *service) issue(ctx context.Context, user *models.User, redirect string) (*LoginResponse, error) {
	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	var customerID *uint
	if user.Customer != nil {
		id := user.Customer.ID
		customerID = &id
	}

	accessID := session.NewAccessID()
	tokenPayload := pkgAuth.AccessTokenPayload{
		UserID:     user.ID,
		CustomerID: customerID,
		Role:       users.RoleOf(user),
		JTI:        accessID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, tokenPayload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Open(ctx, accessID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   now.Add(s.jwtCfg.AccessTTL()),
		CustomerID:  customerID,
		RedirectTo:  redirect,
		User:        users.FromModel(user),
	}, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}

func resetSubject(user *models.User) pkgAuth.ResetSubject {
	return pkgAuth.ResetSubject{
		UserID:       user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
}

// ResetLink renders the address mailed to the user.
func ResetLink(baseURL, email, token string) string {
	return fmt.Sprintf("%s/password-reset/%s/%s/", strings.TrimRight(baseURL, "/"), url.PathEscape(email), token)
}

// SafeNext keeps post-login redirects on this site.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
