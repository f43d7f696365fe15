package models

import "time"

// VaultEntry is the metadata record of one uploaded file. The bytes live in
// the blob store under StoredName.
type VaultEntry struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"userId"`
	StoredName   string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"fileSize"`
	StoragePath  string    `json:"filePath"`
	Description  *string   `json:"description"`
	IsPrivate    bool      `json:"isPrivate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EntryPatch carries the mutable fields of a VaultEntry. Nil fields are left
// unchanged.
type EntryPatch struct {
	Description *string
	IsPrivate   *bool
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Description == nil && p.IsPrivate == nil
}
