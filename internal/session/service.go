// Package session implements the login flow: account resolution by email,
// password verification, credential issuance and the forensic trail around
// each attempt.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"medicloud-backend/internal/accounts"
	"medicloud-backend/internal/audit"
	"medicloud-backend/internal/shared/auth"
)

var (
	// ErrInvalidCredentials covers both unknown account and wrong password.
	// Callers must present them identically to avoid account enumeration.
	ErrInvalidCredentials = errors.New("email or password incorrect")
	// ErrAccountBlocked rejects login for blocked accounts.
	ErrAccountBlocked = errors.New("account blocked")
)

// Service performs logins and issues credentials.
type Service struct {
	Accounts accounts.Repo
	Signer   *auth.Signer
	Recorder *audit.Recorder
}

// NewService constructs a Service.
func NewService(repo accounts.Repo, signer *auth.Signer, recorder *audit.Recorder) *Service {
	return &Service{Accounts: repo, Signer: signer, Recorder: recorder}
}

// Result is a successful login.
type Result struct {
	Token   string
	Message string
}

// Login resolves the account by email and verifies the password. A failed
// attempt leaves a forensic entry only when the account resolved; an
// unresolved email cannot be referenced by the forensic log.
func (s *Service) Login(ctx context.Context, email, password, sourceIP string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Result{}, ErrInvalidCredentials
	}

	account, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			// No forensic entry: there is no account id to reference.
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, err
	}

	if account.Status == accounts.StatusBlocked {
		id := account.ID
		s.Recorder.Forensic(&id, nil, sourceIP, audit.ActionLoginAttempt, audit.OutcomeDeniedBlocked)
		return Result{}, ErrAccountBlocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		id := account.ID
		s.Recorder.Forensic(&id, nil, sourceIP, audit.ActionLoginAttempt, audit.OutcomeDeniedPassword)
		return Result{}, ErrInvalidCredentials
	}

	token, err := s.Signer.Issue(account.ID, account.RoleID, account.Name, account.Email)
	if err != nil {
		return Result{}, fmt.Errorf("issue credential: %w", err)
	}

	id := account.ID
	s.Recorder.Forensic(&id, nil, sourceIP, audit.ActionLoginSuccess, audit.OutcomeSuccess)
	s.Recorder.Audit(account.Email, account.RoleID, "Inicio de sesion")

	return Result{
		Token:   token,
		Message: "Bienvenido a MediCloud, " + account.Name,
	}, nil
}
