package accounts

import "context"

// Repo defines persistence operations for user accounts.
type Repo interface {
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
	List(ctx context.Context) ([]Account, error)
	Insert(ctx context.Context, a Account) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// Delete removes the account after nulling forensic references to it.
	// Forensic rows outlive the account.
	Delete(ctx context.Context, id int64) error
}
