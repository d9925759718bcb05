package vault

import (
	"context"
	"database/sql"
	"errors"

	"medicloud-backend/internal/policy"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// documentJoin joins documento with its folder, owning organization and
// current version (greatest version id per document).
const documentJoin = `
SELECT d.id_documento, d.nombre_archivo, c.nombre AS carpeta, d.criticidad,
       v.clave_almacen, cl.nombre_empresa
FROM documento d
JOIN carpeta c ON c.id_carpeta = d.id_carpeta
JOIN cliente cl ON cl.id_cliente = c.id_cliente
JOIN version_documento v ON v.id_documento = d.id_documento
  AND v.id_version = (
    SELECT MAX(v2.id_version) FROM version_documento v2
    WHERE v2.id_documento = d.id_documento
  )`

func (r *PGRepo) ListDocuments(ctx context.Context, scope policy.Scope) ([]DocumentView, error) {
	query := documentJoin + "\nORDER BY d.id_documento DESC"
	var args []any
	if !scope.Unrestricted {
		query = documentJoin + "\nWHERE cl.nombre_empresa ILIKE '%' || $1 || '%'\nORDER BY d.id_documento DESC"
		args = append(args, scope.Tenant)
	}
	return r.queryDocuments(ctx, query, args...)
}

func (r *PGRepo) SearchDocuments(ctx context.Context, term string, scope policy.Scope) ([]DocumentView, error) {
	// The search term is untrusted and always bound, never concatenated.
	query := documentJoin + "\nWHERE d.nombre_archivo ILIKE '%' || $1 || '%'"
	args := []any{term}
	if !scope.Unrestricted {
		query += " AND cl.nombre_empresa ILIKE '%' || $2 || '%'"
		args = append(args, scope.Tenant)
	}
	query += "\nORDER BY d.id_documento DESC"
	return r.queryDocuments(ctx, query, args...)
}

func (r *PGRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]DocumentView, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentView
	for rows.Next() {
		var d DocumentView
		if err := rows.Scan(&d.DocumentID, &d.FileName, &d.FolderName, &d.Criticality, &d.StorageKey, &d.Organization); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListFolders(ctx context.Context, scope policy.Scope) ([]Folder, error) {
	query := `
SELECT c.id_carpeta, c.nombre, c.ruta, c.id_cliente, cl.nombre_empresa, c.creado_en
FROM carpeta c
JOIN cliente cl ON cl.id_cliente = c.id_cliente`
	var args []any
	if !scope.Unrestricted {
		query += "\nWHERE cl.nombre_empresa ILIKE '%' || $1 || '%'"
		args = append(args, scope.Tenant)
	}
	query += "\nORDER BY c.id_carpeta"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.OrganizationID, &f.Organization, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ResolveOrganization finds the organization whose display name contains the
// tenant key. Substring match, lossy by design; first match by id wins.
func (r *PGRepo) ResolveOrganization(ctx context.Context, tenant string) (int64, error) {
	if tenant == "" {
		return 0, ErrTenantUnresolved
	}
	const query = `
SELECT id_cliente FROM cliente
WHERE nombre_empresa ILIKE '%' || $1 || '%'
ORDER BY id_cliente
LIMIT 1`
	var id int64
	err := r.DB.QueryRowContext(ctx, query, tenant).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTenantUnresolved
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) InsertFolder(ctx context.Context, organizationID int64, name, path string) (int64, error) {
	const query = `
INSERT INTO carpeta (nombre, ruta, id_cliente)
VALUES ($1, $2, $3)
RETURNING id_carpeta`
	var id int64
	if err := r.DB.QueryRowContext(ctx, query, name, path, organizationID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) GetFolder(ctx context.Context, folderID int64) (Folder, error) {
	const query = `
SELECT c.id_carpeta, c.nombre, c.ruta, c.id_cliente, cl.nombre_empresa, c.creado_en
FROM carpeta c
JOIN cliente cl ON cl.id_cliente = c.id_cliente
WHERE c.id_carpeta = $1`
	var f Folder
	err := r.DB.QueryRowContext(ctx, query, folderID).Scan(&f.ID, &f.Name, &f.Path, &f.OrganizationID, &f.Organization, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Folder{}, ErrNotFound
		}
		return Folder{}, err
	}
	return f, nil
}

func (r *PGRepo) CountFolderDocuments(ctx context.Context, folderID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM documento WHERE id_carpeta = $1`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, folderID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PGRepo) DeleteFolder(ctx context.Context, folderID int64) error {
	const query = `DELETE FROM carpeta WHERE id_carpeta = $1`
	res, err := r.DB.ExecContext(ctx, query, folderID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) InsertDocument(ctx context.Context, folderID int64, fileName, mimeType, criticality string) (int64, error) {
	const query = `
INSERT INTO documento (id_carpeta, nombre_archivo, tipo_mime, criticidad)
VALUES ($1, $2, $3, $4)
RETURNING id_documento`
	if criticality == "" {
		criticality = "Media"
	}
	var id int64
	if err := r.DB.QueryRowContext(ctx, query, folderID, fileName, mimeType, criticality).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) InsertVersion(ctx context.Context, documentID int64, storageKey, integrityHash string) (int64, error) {
	const query = `
INSERT INTO version_documento (id_documento, clave_almacen, hash_integridad)
VALUES ($1, $2, $3)
RETURNING id_version`
	var id int64
	if err := r.DB.QueryRowContext(ctx, query, documentID, storageKey, integrityHash).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) CurrentVersion(ctx context.Context, documentID int64) (Version, error) {
	const query = `
SELECT id_version, id_documento, clave_almacen, COALESCE(hash_integridad, '')
FROM version_documento
WHERE id_documento = $1
ORDER BY id_version DESC
LIMIT 1`
	var v Version
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(&v.ID, &v.DocumentID, &v.StorageKey, &v.IntegrityHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

func (r *PGRepo) ListVersionKeys(ctx context.Context, documentID int64) ([]string, error) {
	const query = `SELECT clave_almacen FROM version_documento WHERE id_documento = $1`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func (r *PGRepo) NullForensicDocumentRefs(ctx context.Context, documentID int64) error {
	const query = `UPDATE log_forense SET id_documento = NULL WHERE id_documento = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

func (r *PGRepo) DeleteVersions(ctx context.Context, documentID int64) error {
	const query = `DELETE FROM version_documento WHERE id_documento = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

func (r *PGRepo) DeleteDocument(ctx context.Context, documentID int64) error {
	const query = `DELETE FROM documento WHERE id_documento = $1`
	res, err := r.DB.ExecContext(ctx, query, documentID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
