package vault

import (
	"context"
	"errors"

	"medicloud-backend/internal/policy"
)

var (
	// ErrInvalidInput rejects missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an absent folder, document or version.
	ErrNotFound = errors.New("not found")
	// ErrFolderNotEmpty rejects deletion of a folder that still holds documents.
	ErrFolderNotEmpty = errors.New("folder not empty")
	// ErrTenantUnresolved marks a mutating operation whose acting tenant
	// matched no organization. Never silently defaulted.
	ErrTenantUnresolved = errors.New("tenant unresolved")
)

// Repo defines persistence operations for the vault catalog. All reads take
// the caller's scope filter; the substring tenant match happens in SQL.
type Repo interface {
	ListDocuments(ctx context.Context, scope policy.Scope) ([]DocumentView, error)
	SearchDocuments(ctx context.Context, term string, scope policy.Scope) ([]DocumentView, error)
	ListFolders(ctx context.Context, scope policy.Scope) ([]Folder, error)

	ResolveOrganization(ctx context.Context, tenant string) (int64, error)
	InsertFolder(ctx context.Context, organizationID int64, name, path string) (int64, error)
	GetFolder(ctx context.Context, folderID int64) (Folder, error)
	CountFolderDocuments(ctx context.Context, folderID int64) (int, error)
	DeleteFolder(ctx context.Context, folderID int64) error

	InsertDocument(ctx context.Context, folderID int64, fileName, mimeType, criticality string) (int64, error)
	InsertVersion(ctx context.Context, documentID int64, storageKey, integrityHash string) (int64, error)
	CurrentVersion(ctx context.Context, documentID int64) (Version, error)
	ListVersionKeys(ctx context.Context, documentID int64) ([]string, error)

	NullForensicDocumentRefs(ctx context.Context, documentID int64) error
	DeleteVersions(ctx context.Context, documentID int64) error
	DeleteDocument(ctx context.Context, documentID int64) error
}
