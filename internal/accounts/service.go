package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service contains account administration logic.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.Repo.List(ctx)
}

// Create registers a new account with a hashed password and role assignment.
func (s *Service) Create(ctx context.Context, name, email, password string, roleID int) (int64, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return 0, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return 0, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if !validRoleID(roleID) {
		return 0, fmt.Errorf("%w: unknown role id %d", ErrInvalidInput, roleID)
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	return s.Repo.Insert(ctx, Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Status:       StatusActive,
		RoleID:       roleID,
	})
}

// validRoleID matches the seeded rol rows: 1 Gestion, 2 Estandar,
// 3 Administrador. Anything else would fail the usuario_rol foreign key.
func validRoleID(id int) bool {
	switch id {
	case 1, 2, 3:
		return true
	}
	return false
}

// SetStatus switches an account between Activo and Bloqueado.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	if status != StatusActive && status != StatusBlocked {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.UpdateStatus(ctx, id, status)
}

// ResetPassword replaces the account's password hash.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.UpdatePassword(ctx, id, string(hash))
}

// Delete removes the account, preserving forensic history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}
