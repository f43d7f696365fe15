package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_OwnerIsolationScenario(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceID := env.register(t, "alice")

	rec := env.do(uploadRequest(t, alice, uploadPart{filename: "a.png", contentType: "image/png", data: pngBytes}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[models.VaultEntry](t, rec)
	assert.Equal(t, aliceID, entry.OwnerID)
	assert.Equal(t, "image/png", entry.MimeType)
	assert.Equal(t, int64(10), entry.SizeBytes)
	assert.Equal(t, "/uploads/"+entry.StoredName, entry.StoragePath)
	assert.True(t, entry.IsPrivate)

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault", nil), alice))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.VaultEntry](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, entry.ID, list[0].ID)

	bob, _ := env.register(t, "bob")

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault/"+entry.ID, nil), bob))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())

	rec = env.do(withBearer(httptest.NewRequest(http.MethodDelete, "/api/vault/"+entry.ID, nil), bob))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, entry.StoragePath, nil), bob))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault", nil), bob))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault/"+entry.ID, nil), alice))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVault_ServeFile(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice")

	rec := env.do(uploadRequest(t, alice, uploadPart{filename: "a.png", contentType: "image/png", data: pngBytes}))
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[models.VaultEntry](t, rec)

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, entry.StoragePath, nil), alice))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = env.do(httptest.NewRequest(http.MethodGet, entry.StoragePath, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVault_UploadRejections(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.MaxUploadSize = 16 })
	alice, _ := env.register(t, "alice")

	tests := []struct {
		name   string
		part   uploadPart
		status int
		errMsg string
	}{
		{
			name:   "unsupported type",
			part:   uploadPart{filename: "notes.txt", contentType: "text/plain", data: []byte("hello")},
			status: http.StatusBadRequest,
			errMsg: "unsupported file type: only images and videos are allowed",
		},
		{
			name:   "too large",
			part:   uploadPart{filename: "big.png", contentType: "image/png", data: make([]byte, 32)},
			status: http.StatusRequestEntityTooLarge,
			errMsg: "file exceeds the maximum upload size",
		},
		{
			name:   "bad isPrivate",
			part:   uploadPart{filename: "a.png", contentType: "image/png", data: pngBytes, fields: map[string]string{"isPrivate": "maybe"}},
			status: http.StatusBadRequest,
			errMsg: "isPrivate must be true or false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(uploadRequest(t, alice, tt.part))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errMsg, decode[errorBody](t, rec).Error)
		})
	}

	names, err := env.blobs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)

	rec := env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault", nil), alice))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestVault_UploadWithoutFile(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice")

	rec := env.do(withBearer(jsonRequest(t, http.MethodPost, "/api/vault/upload", map[string]string{}), alice))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no file uploaded", decode[errorBody](t, rec).Error)
}

func TestVault_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice")

	rec := env.do(uploadRequest(t, alice, uploadPart{
		filename:    "clip.mp4",
		contentType: "video/mp4",
		data:        []byte("not really a video"),
		fields:      map[string]string{"description": "beach", "isPrivate": "false"},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[models.VaultEntry](t, rec)
	require.NotNil(t, entry.Description)
	assert.Equal(t, "beach", *entry.Description)
	assert.False(t, entry.IsPrivate)

	rec = env.do(withBearer(jsonRequest(t, http.MethodPatch, "/api/vault/"+entry.ID, map[string]any{"description": "sunset"}), alice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.VaultEntry](t, rec)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "sunset", *updated.Description)
	assert.False(t, updated.IsPrivate)

	rec = env.do(withBearer(jsonRequest(t, http.MethodPatch, "/api/vault/"+entry.ID, map[string]any{}), alice))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(withBearer(httptest.NewRequest(http.MethodDelete, "/api/vault/"+entry.ID, nil), alice))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"file deleted"}`, rec.Body.String())

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault/"+entry.ID, nil), alice))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	blobs, err := env.blobs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestVault_MalformedIDIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice")

	rec := env.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/vault/not-a-uuid", nil), alice))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
