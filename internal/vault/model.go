package vault

import "time"

// Folder is a storage folder owned by exactly one organization.
type Folder struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Path           string    `json:"path"`
	OrganizationID int64     `json:"organizationId"`
	Organization   string    `json:"organization"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DocumentView is the denormalized row returned by vault reads: document
// joined with its folder, owning organization and current version.
type DocumentView struct {
	DocumentID   int64  `json:"documentId"`
	FileName     string `json:"fileName"`
	FolderName   string `json:"folderName"`
	Criticality  string `json:"criticality"`
	StorageKey   string `json:"-"`
	Organization string `json:"organization"`
}

// Version points into the external object store. Versions are append-only;
// the current version is the one with the greatest id.
type Version struct {
	ID            int64
	DocumentID    int64
	StorageKey    string
	IntegrityHash string
}
