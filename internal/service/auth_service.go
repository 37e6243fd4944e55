package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// StaffStore reads and creates staff accounts.
type StaffStore interface {
	GetByEmail(ctx context.Context, email string) (*model.StaffUser, error)
	Create(ctx context.Context, email, passwordHash, role string) (uint64, error)
}

// AuthService authenticates restaurant staff for the admin API.
type AuthService struct {
	staff      StaffStore
	secret     string
	ttlMin     int
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(staff StaffStore, secret string, ttlMin, bcryptCost int, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{staff: staff, secret: secret, ttlMin: ttlMin, bcryptCost: bcryptCost, log: log}
}

// LoginResult is a signed access token for a staff member.
type LoginResult struct {
	User  *model.StaffUser
	Token utils.AccessToken
}

// Login verifies the password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("email/password required")
	}
	u, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load staff: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.log.Info("staff login rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.secret, u.ID, u.Role, s.ttlMin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: u, Token: tok}, nil
}

// EnsureStaff creates the account when no active one exists for the email.
// It is used at startup to bootstrap the first admin.
func (s *AuthService) EnsureStaff(ctx context.Context, email, password, role string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != model.RoleAdmin && role != model.RoleStaff {
		return false, invalid("unknown role %q", role)
	}
	if email == "" || password == "" {
		return false, invalid("email/password required")
	}
	_, err := s.staff.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("load staff: %w", err)
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.staff.Create(ctx, email, hash, role); err != nil {
		return false, fmt.Errorf("create staff: %w", err)
	}
	s.log.Info("staff account created", zap.String("email", email), zap.String("role", role))
	return true, nil
}
