package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"medicloud-backend/internal/accounts"
	"medicloud-backend/internal/audit"
	"medicloud-backend/internal/shared/auth"
)

type fakeAccounts struct {
	byEmail map[string]accounts.Account
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (accounts.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return accounts.Account{}, accounts.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByID(context.Context, int64) (accounts.Account, error) {
	return accounts.Account{}, accounts.ErrNotFound
}
func (f *fakeAccounts) List(context.Context) ([]accounts.Account, error) { return nil, nil }
func (f *fakeAccounts) Insert(context.Context, accounts.Account) (int64, error) {
	return 0, errors.New("not implemented")
}
func (f *fakeAccounts) UpdateStatus(context.Context, int64, string) error   { return nil }
func (f *fakeAccounts) UpdatePassword(context.Context, int64, string) error { return nil }
func (f *fakeAccounts) Delete(context.Context, int64) error                 { return nil }

type captureAudit struct {
	mu        sync.Mutex
	forensics []audit.ForensicEntry
	audits    []string
}

func (c *captureAudit) InsertAudit(_ context.Context, _ string, _ int, action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audits = append(c.audits, action)
	return nil
}

func (c *captureAudit) InsertForensic(_ context.Context, e audit.ForensicEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forensics = append(c.forensics, e)
	return nil
}

func (c *captureAudit) LastAudit(context.Context, int) ([]audit.Entry, error) { return nil, nil }

func newTestService(t *testing.T, repo accounts.Repo, rec *audit.Recorder) *Service {
	t.Helper()
	signer, err := auth.NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return NewService(repo, signer, rec)
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func TestLoginSuccess(t *testing.T) {
	repo := &fakeAccounts{byEmail: map[string]accounts.Account{
		"ana@clinicasanjose.com": {
			ID:           7,
			Name:         "Ana",
			Email:        "ana@clinicasanjose.com",
			PasswordHash: hash(t, "s3cret"),
			Status:       accounts.StatusActive,
			RoleID:       1,
		},
	}}
	cap := &captureAudit{}
	rec := audit.NewRecorder(cap)
	svc := newTestService(t, repo, rec)

	res, err := svc.Login(context.Background(), " Ana@ClinicaSanJose.com ", "s3cret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if res.Message != "Bienvenido a MediCloud, Ana" {
		t.Fatalf("unexpected message %q", res.Message)
	}

	rec.Close()
	if len(cap.forensics) != 1 {
		t.Fatalf("expected 1 forensic entry, got %d", len(cap.forensics))
	}
	e := cap.forensics[0]
	if e.Action != audit.ActionLoginSuccess || e.Outcome != audit.OutcomeSuccess {
		t.Fatalf("unexpected forensic %q/%q", e.Action, e.Outcome)
	}
	if e.UserID == nil || *e.UserID != 7 {
		t.Fatal("forensic entry should reference the account")
	}
	if e.SourceIP != "10.0.0.1" {
		t.Fatalf("unexpected source ip %q", e.SourceIP)
	}
}

func TestLoginUnknownAndWrongPasswordLookIdentical(t *testing.T) {
	repo := &fakeAccounts{byEmail: map[string]accounts.Account{
		"ana@clinicasanjose.com": {
			ID:           7,
			Email:        "ana@clinicasanjose.com",
			PasswordHash: hash(t, "s3cret"),
			Status:       accounts.StatusActive,
		},
	}}
	cap := &captureAudit{}
	rec := audit.NewRecorder(cap)
	svc := newTestService(t, repo, rec)

	_, errUnknown := svc.Login(context.Background(), "nadie@otro.com", "whatever", "10.0.0.1")
	_, errWrongPw := svc.Login(context.Background(), "ana@clinicasanjose.com", "wrong", "10.0.0.1")

	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Fatalf("both failures must map to ErrInvalidCredentials, got %v and %v", errUnknown, errWrongPw)
	}

	rec.Close()
	// Only the resolved account leaves a forensic trace.
	if len(cap.forensics) != 1 {
		t.Fatalf("expected 1 forensic entry, got %d", len(cap.forensics))
	}
	e := cap.forensics[0]
	if e.Action != audit.ActionLoginAttempt || e.Outcome != audit.OutcomeDeniedPassword {
		t.Fatalf("unexpected forensic %q/%q", e.Action, e.Outcome)
	}
	if e.UserID == nil || *e.UserID != 7 {
		t.Fatal("forensic entry should reference the resolved account")
	}
}

func TestLoginBlockedAccount(t *testing.T) {
	repo := &fakeAccounts{byEmail: map[string]accounts.Account{
		"ana@clinicasanjose.com": {
			ID:           7,
			Email:        "ana@clinicasanjose.com",
			PasswordHash: hash(t, "s3cret"),
			Status:       accounts.StatusBlocked,
		},
	}}
	cap := &captureAudit{}
	rec := audit.NewRecorder(cap)
	svc := newTestService(t, repo, rec)

	// Blocked wins even with the correct password.
	_, err := svc.Login(context.Background(), "ana@clinicasanjose.com", "s3cret", "10.0.0.1")
	if !errors.Is(err, ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}

	rec.Close()
	if len(cap.forensics) != 1 {
		t.Fatalf("expected 1 forensic entry, got %d", len(cap.forensics))
	}
	if got := cap.forensics[0].Outcome; got != audit.OutcomeDeniedBlocked {
		t.Fatalf("expected %q outcome, got %q", audit.OutcomeDeniedBlocked, got)
	}
}

func TestLoginEmptyInput(t *testing.T) {
	cap := &captureAudit{}
	rec := audit.NewRecorder(cap)
	svc := newTestService(t, &fakeAccounts{}, rec)

	if _, err := svc.Login(context.Background(), "", "pw", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.com", "", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	rec.Close()
	if len(cap.forensics) != 0 {
		t.Fatalf("expected no forensic entries, got %d", len(cap.forensics))
	}
}
