package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoInsertForensicNullableRefs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	// Unresolved account: user reference stays NULL.
	mock.ExpectExec("INSERT INTO log_forense").
		WithArgs(nil, nil, "10.0.0.1", ActionLoginAttempt, OutcomeFailed).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.InsertForensic(context.Background(), ForensicEntry{
		SourceIP: "10.0.0.1",
		Action:   ActionLoginAttempt,
		Outcome:  OutcomeFailed,
	})
	if err != nil {
		t.Fatalf("InsertForensic: %v", err)
	}

	userID := int64(4)
	mock.ExpectExec("INSERT INTO log_forense").
		WithArgs(userID, nil, "10.0.0.1", ActionLoginSuccess, OutcomeSuccess).
		WillReturnResult(sqlmock.NewResult(2, 1))

	err = repo.InsertForensic(context.Background(), ForensicEntry{
		UserID:   &userID,
		SourceIP: "10.0.0.1",
		Action:   ActionLoginSuccess,
		Outcome:  OutcomeSuccess,
	})
	if err != nil {
		t.Fatalf("InsertForensic: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLastAuditNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id_auditoria", "email", "id_rol", "accion", "fecha"}).
		AddRow(9, "admin@medicloud.example", 3, "accion reciente", now).
		AddRow(8, "ana@acme.example", 2, "accion anterior", now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id_auditoria, email, id_rol, accion, fecha").
		WithArgs(100).
		WillReturnRows(rows)

	entries, err := repo.LastAudit(context.Background(), 100)
	if err != nil {
		t.Fatalf("LastAudit: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 9 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
