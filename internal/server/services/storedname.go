package services

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/lithammer/shortuuid/v4"
)

const maxSlugLen = 40

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// newStoredName builds "<unix-millis>_<shortuuid>_<slug><ext>" from the
// client's file name. The shortuuid carries the uniqueness; the rest is for
// humans browsing the store.
func newStoredName(now time.Time, originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))

	ext := strings.ToLower(filepath.Ext(base))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	s := slug.Make(stem)
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	if s == "" {
		s = "file"
	}

	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + shortuuid.New() + "_" + s + ext
}

// storagePath is where clients fetch a stored blob.
func storagePath(storedName string) string {
	return "/uploads/" + storedName
}
