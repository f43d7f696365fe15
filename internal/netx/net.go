// Package netx holds HTTP helpers shared by the client.
package netx

import (
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// videoTypes covers extensions the stdlib table does not know on every
// platform.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/avi",
}

// ContentTypeByExtension guesses the media type of path from its extension
// and falls back to application/octet-stream.
func ContentTypeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// MultipartFile streams the file at path as a multipart/form-data body. The
// text fields come first, sorted by name, then the file under fileField with
// a Content-Type guessed from its extension. The file is opened before
// returning so that a missing file is reported right away.
func MultipartFile(path, fileField string, fields map[string]string) (io.ReadCloser, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		defer f.Close()
		pw.CloseWithError(writeMultipart(w, f, filepath.Base(path), fileField, fields))
	}()

	return pr, w.FormDataContentType(), nil
}

func writeMultipart(w *multipart.Writer, f io.Reader, filename, fileField string, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     fileField,
		"filename": filename,
	}))
	h.Set("Content-Type", ContentTypeByExtension(filename))

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	return w.Close()
}
