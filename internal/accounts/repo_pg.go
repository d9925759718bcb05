package accounts

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const accountSelect = `
SELECT u.id_usuario, u.nombre_usuario, u.email, u.hash_contrasena, u.estado,
       COALESCE(ur.id_rol, 0), u.creado_en
FROM usuario u
LEFT JOIN usuario_rol ur ON ur.id_usuario = u.id_usuario`

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, accountSelect+"\nWHERE u.email = $1", email))
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, accountSelect+"\nWHERE u.id_usuario = $1", id))
}

func (r *PGRepo) scanOne(row *sql.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Status, &a.RoleID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.DB.QueryContext(ctx, accountSelect+"\nORDER BY u.id_usuario")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Status, &a.RoleID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) Insert(ctx context.Context, a Account) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const insertUser = `
INSERT INTO usuario (nombre_usuario, email, hash_contrasena, estado)
VALUES ($1, $2, $3, $4)
RETURNING id_usuario`
	var id int64
	if err := tx.QueryRowContext(ctx, insertUser, a.Name, a.Email, a.PasswordHash, a.Status).Scan(&id); err != nil {
		return 0, err
	}

	const insertRole = `INSERT INTO usuario_rol (id_usuario, id_rol) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, insertRole, id, a.RoleID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	const query = `UPDATE usuario SET estado = $1 WHERE id_usuario = $2`
	res, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE usuario SET hash_contrasena = $1 WHERE id_usuario = $2`
	res, err := r.DB.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete nulls forensic user references, drops role assignments, then the
// account row. Ordering keeps the forensic history intact.
func (r *PGRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE log_forense SET id_usuario = NULL WHERE id_usuario = $1`, id); err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM usuario_rol WHERE id_usuario = $1`, id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM usuario WHERE id_usuario = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
