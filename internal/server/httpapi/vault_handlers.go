package httpapi

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/dmitrijs2005/mediavault/internal/server/services"
	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and the text fields on top
// of the file itself.
const multipartOverhead = 1 << 20

func (s *Server) listEntries(c *gin.Context) {
	items, err := s.vault.List(c.Request.Context(), userIDFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func parseOptionalBool(v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			abortWithError(c, common.ErrPayloadTooLarge)
			return
		}
		abortWithError(c, common.ErrNoFile)
		return
	}
	if fh.Size > s.opts.MaxUploadSize {
		abortWithError(c, common.ErrPayloadTooLarge)
		return
	}

	isPrivate, err := parseOptionalBool(c.PostForm("isPrivate"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "isPrivate must be true or false"})
		return
	}
	var description *string
	if d, ok := c.GetPostForm("description"); ok {
		description = &d
	}

	f, err := fh.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer f.Close()

	entry, err := s.vault.Upload(c.Request.Context(), services.UploadRequest{
		OwnerID:      userIDFrom(c),
		File:         f,
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Description:  description,
		IsPrivate:    isPrivate,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) getEntry(c *gin.Context) {
	entry, err := s.vault.Get(c.Request.Context(), userIDFrom(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type updateRequest struct {
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"isPrivate"`
}

func (s *Server) updateEntry(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	entry, err := s.vault.Update(c.Request.Context(), userIDFrom(c), c.Param("id"), models.EntryPatch{
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteEntry(c *gin.Context) {
	if err := s.vault.Delete(c.Request.Context(), userIDFrom(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}

func (s *Server) serveFile(c *gin.Context) {
	blob, entry, err := s.vault.Open(c.Request.Context(), userIDFrom(c), c.Param("storedName"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer blob.Reader.Close()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "private, max-age=3600",
	}
	if cd := mime.FormatMediaType("inline", map[string]string{"filename": entry.OriginalName}); cd != "" {
		headers["Content-Disposition"] = cd
	}
	c.DataFromReader(http.StatusOK, blob.Size, entry.MimeType, blob.Reader, headers)
}
