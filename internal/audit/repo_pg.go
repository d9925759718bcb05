package audit

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) InsertAudit(ctx context.Context, email string, roleID int, action string) error {
	const query = `INSERT INTO auditoria (email, id_rol, accion) VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, query, email, roleID, action)
	return err
}

func (r *PGRepo) InsertForensic(ctx context.Context, e ForensicEntry) error {
	const query = `
INSERT INTO log_forense (id_usuario, id_documento, ip_origen, accion, resultado)
VALUES ($1, $2, $3, $4, $5)`

	var userID, documentID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: *e.UserID, Valid: true}
	}
	if e.DocumentID != nil {
		documentID = sql.NullInt64{Int64: *e.DocumentID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, userID, documentID, e.SourceIP, e.Action, e.Outcome)
	return err
}

func (r *PGRepo) LastAudit(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	const query = `
SELECT id_auditoria, email, id_rol, accion, fecha
FROM auditoria
ORDER BY id_auditoria DESC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Email, &e.RoleID, &e.Action, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
