// Package models defines client-side data models used by the mediavault CLI.
package models

import (
	"fmt"
	"time"
)

// User is the account as reported by the server.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Entry mirrors a vault entry in the server's JSON format.
type Entry struct {
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

// DescriptionText returns the description or "" when there is none.
func (e Entry) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// String renders a one-line overview used by the list command.
func (e Entry) String() string {
	return fmt.Sprintf("%s  %-30s  %-16s  %8s  %s",
		e.ID, e.OriginalName, e.MimeType, HumanSize(e.SizeBytes), e.CreatedAt.Local().Format("2006-01-02 15:04"))
}

// HumanSize formats n bytes using binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
