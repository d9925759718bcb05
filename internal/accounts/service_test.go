package accounts

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	byEmail  map[string]Account
	inserted []Account
	statuses map[int64]string
	hashes   map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byEmail:  map[string]Account{},
		statuses: map[int64]string{},
		hashes:   map[int64]string{},
	}
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) GetByID(context.Context, int64) (Account, error) {
	return Account{}, ErrNotFound
}

func (f *fakeRepo) List(context.Context) ([]Account, error) { return nil, nil }

func (f *fakeRepo) Insert(_ context.Context, a Account) (int64, error) {
	f.inserted = append(f.inserted, a)
	return int64(len(f.inserted)), nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.hashes[id] = hash
	return nil
}

func (f *fakeRepo) Delete(context.Context, int64) error { return nil }

func TestCreateHashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), " Ana ", " Ana@ClinicaSanJose.com ", "s3cret", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	a := repo.inserted[0]
	if a.Email != "ana@clinicasanjose.com" {
		t.Fatalf("email not normalized: %q", a.Email)
	}
	if a.Name != "Ana" {
		t.Fatalf("name not trimmed: %q", a.Name)
	}
	if a.Status != StatusActive {
		t.Fatalf("new accounts must start %q, got %q", StatusActive, a.Status)
	}
	if a.PasswordHash == "s3cret" || a.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	repo.byEmail["ana@clinicasanjose.com"] = Account{ID: 1, Email: "ana@clinicasanjose.com"}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "Ana", "ana@clinicasanjose.com", "pw", 1)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatal("no account should be inserted")
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newFakeRepo())

	cases := []struct {
		name, email, password string
	}{
		{"", "a@b.com", "pw"},
		{"Ana", "", "pw"},
		{"Ana", "a@b.com", ""},
		{"Ana", "not-an-email", "pw"},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.name, tc.email, tc.password, 1); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Create(%q,%q,%q): expected ErrInvalidInput, got %v", tc.name, tc.email, tc.password, err)
		}
	}
}

func TestSetStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if err := svc.SetStatus(context.Background(), 4, StatusBlocked); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if repo.statuses[4] != StatusBlocked {
		t.Fatalf("status not applied: %q", repo.statuses[4])
	}

	if err := svc.SetStatus(context.Background(), 4, "Suspendido"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}
}

func TestResetPasswordStoresNewHash(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if err := svc.ResetPassword(context.Background(), 4, "nueva"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	hash := repo.hashes[4]
	if hash == "" || hash == "nueva" {
		t.Fatal("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("nueva")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), 4, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty password must be rejected, got %v", err)
	}
}

func TestCreateRejectsUnknownRoleID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	// Only the seeded role ids exist; anything else would violate the
	// usuario_rol foreign key and must be rejected up front.
	for _, roleID := range []int{-1, 0, 4, 99} {
		if _, err := svc.Create(context.Background(), "Ana", "ana@clinicasanjose.com", "pw", roleID); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("roleID %d: expected ErrInvalidInput, got %v", roleID, err)
		}
	}
	if len(repo.inserted) != 0 {
		t.Fatal("no account should be inserted")
	}

	for i, roleID := range []int{1, 2, 3} {
		email := []string{"a@x.com", "b@x.com", "c@x.com"}[i]
		if _, err := svc.Create(context.Background(), "Ana", email, "pw", roleID); err != nil {
			t.Errorf("roleID %d: unexpected error %v", roleID, err)
		}
	}
}
