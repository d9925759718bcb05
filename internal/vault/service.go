// Package vault implements the policy-filtered document catalog: scoped
// reads, tenant-scoped writes and the storage-before-metadata upload
// ordering.
package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"medicloud-backend/internal/policy"
	"medicloud-backend/internal/shared/storage/object"
	"medicloud-backend/internal/shared/telemetry"
	"medicloud-backend/internal/shared/util"
)

// DefaultSignedURLTTL bounds how long a retrieval URL stays valid.
const DefaultSignedURLTTL = 60 * time.Second

// Service contains the vault catalog business logic.
type Service struct {
	Repo         Repo
	Store        object.ObjectStore
	SignedURLTTL time.Duration
	now          func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore, signedURLTTL time.Duration) *Service {
	if signedURLTTL <= 0 {
		signedURLTTL = DefaultSignedURLTTL
	}
	return &Service{Repo: repo, Store: store, SignedURLTTL: signedURLTTL, now: time.Now}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListDocuments returns the scoped document join.
func (s *Service) ListDocuments(ctx context.Context, scope policy.Scope) ([]DocumentView, error) {
	if deniedScope(scope) {
		return []DocumentView{}, nil
	}
	return s.Repo.ListDocuments(ctx, scope)
}

// SearchDocuments returns scoped documents whose file name contains term.
func (s *Service) SearchDocuments(ctx context.Context, term string, scope policy.Scope) ([]DocumentView, error) {
	if deniedScope(scope) {
		return []DocumentView{}, nil
	}
	return s.Repo.SearchDocuments(ctx, strings.TrimSpace(term), scope)
}

// ListFolders returns the scoped folder list.
func (s *Service) ListFolders(ctx context.Context, scope policy.Scope) ([]Folder, error) {
	if deniedScope(scope) {
		return []Folder{}, nil
	}
	return s.Repo.ListFolders(ctx, scope)
}

// CreateFolder creates a folder inside the acting tenant's organization.
// Tenant resolution is the substring match; no match is a hard failure.
func (s *Service) CreateFolder(ctx context.Context, tenant, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}
	orgID, err := s.Repo.ResolveOrganization(ctx, tenant)
	if err != nil {
		return 0, err
	}
	path := "/" + util.Slug(name)
	return s.Repo.InsertFolder(ctx, orgID, name, path)
}

// DeleteFolder removes an empty folder. Out-of-scope folders are reported as
// absent so the response leaks nothing about their existence.
func (s *Service) DeleteFolder(ctx context.Context, folderID int64, scope policy.Scope) error {
	folder, err := s.Repo.GetFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if !inScope(folder.Organization, scope) {
		return ErrNotFound
	}
	count, err := s.Repo.CountFolderDocuments(ctx, folderID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrFolderNotEmpty
	}
	return s.Repo.DeleteFolder(ctx, folderID)
}

// Upload stores the payload in object storage and records the document and
// its first version. The object is written first: a storage failure aborts
// before any metadata exists, so a crash can only leave an unreferenced
// object, never a dangling metadata row.
func (s *Service) Upload(ctx context.Context, scope policy.Scope, folderID int64, fileName, contentType, criticality string, r io.Reader) (int64, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	folder, err := s.Repo.GetFolder(ctx, folderID)
	if err != nil {
		return 0, err
	}
	if !scope.Unrestricted {
		if _, err := s.Repo.ResolveOrganization(ctx, scope.Tenant); err != nil {
			return 0, err
		}
		if !inScope(folder.Organization, scope) {
			return 0, ErrNotFound
		}
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	storageKey := fmt.Sprintf("%d_%s", s.now().UTC().Unix(), sanitized)

	hasher := sha256.New()
	if _, err := s.Store.Put(ctx, storageKey, contentType, io.TeeReader(r, hasher)); err != nil {
		return 0, fmt.Errorf("store object: %w", err)
	}
	integrityHash := hex.EncodeToString(hasher.Sum(nil))

	documentID, err := s.Repo.InsertDocument(ctx, folderID, fileName, contentType, criticality)
	if err != nil {
		return 0, err
	}
	if _, err := s.Repo.InsertVersion(ctx, documentID, storageKey, integrityHash); err != nil {
		return 0, err
	}
	return documentID, nil
}

// Delete removes a document: best-effort storage cleanup, forensic reference
// nulling, version rows, then the document row. Steps are independent; a
// failure leaves earlier steps committed (at-least-once cleanup).
func (s *Service) Delete(ctx context.Context, documentID int64) error {
	keys, err := s.Repo.ListVersionKeys(ctx, documentID)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.Store.Delete(ctx, normalizeStorageKey(key)); err != nil {
			// Fail open: an orphaned storage object is preferable to a
			// metadata row pointing at nothing.
			telemetry.Error("vault.storage_delete_failed", map[string]any{
				"document_id": documentID,
				"key":         key,
				"error":       err.Error(),
			})
		}
	}

	if err := s.Repo.NullForensicDocumentRefs(ctx, documentID); err != nil {
		return err
	}
	if err := s.Repo.DeleteVersions(ctx, documentID); err != nil {
		return err
	}
	return s.Repo.DeleteDocument(ctx, documentID)
}

// SignedURL resolves the document's current version and returns a
// short-lived retrieval URL for it.
func (s *Service) SignedURL(ctx context.Context, documentID int64, ttl time.Duration) (string, error) {
	version, err := s.Repo.CurrentVersion(ctx, documentID)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.SignedURLTTL
	}
	return s.Store.SignedURL(ctx, normalizeStorageKey(version.StorageKey), ttl)
}

// normalizeStorageKey turns legacy full-URL values into a bare object key.
// Older revisions stored the complete storage URL instead of the key.
func normalizeStorageKey(key string) string {
	if !strings.Contains(key, "://") {
		return key
	}
	u, err := url.Parse(key)
	if err != nil {
		return key
	}
	return strings.TrimPrefix(u.Path, "/")
}

// deniedScope reports whether a restricted scope carries no tenant key.
// Such a scope matches nothing; binding the empty key into the SQL pattern
// would instead match every organization.
func deniedScope(scope policy.Scope) bool {
	return !scope.Unrestricted && scope.Tenant == ""
}

func inScope(organization string, scope policy.Scope) bool {
	if scope.Unrestricted {
		return true
	}
	if scope.Tenant == "" {
		return false
	}
	return strings.Contains(strings.ToLower(organization), scope.Tenant)
}
