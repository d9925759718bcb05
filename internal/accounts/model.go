package accounts

import (
	"errors"
	"time"
)

// Account statuses. Blocked accounts cannot log in.
const (
	StatusActive  = "Activo"
	StatusBlocked = "Bloqueado"
)

var (
	// ErrNotFound marks an absent account.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken rejects creation with a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidInput rejects missing or malformed fields.
	ErrInvalidInput = errors.New("invalid input")
)

// Account is a stored user account. The schema keys on email.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	RoleID       int       `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
}
