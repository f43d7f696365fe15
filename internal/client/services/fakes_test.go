package services

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/mediavault/internal/client/client"
	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	err error

	user    models.User
	items   []models.Entry
	entry   *models.Entry
	content string

	logoutCalled bool
	closeCalled  bool
	lastPath     string
	lastDesc     *string
	deletedID    string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error { f.closeCalled = true; return nil }
func (f *fakeClient) Register(_ context.Context, username, _ string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Username: username}, nil
}
func (f *fakeClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	return f.Register(ctx, username, password)
}
func (f *fakeClient) Logout(context.Context) error { f.logoutCalled = true; return f.err }
func (f *fakeClient) Me(context.Context) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.user, nil
}
func (f *fakeClient) Ping(context.Context) error { return f.err }
func (f *fakeClient) List(context.Context) ([]models.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Entry(nil), f.items...), nil
}
func (f *fakeClient) Get(context.Context, string) (*models.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.entry
	return &cp, nil
}
func (f *fakeClient) Upload(_ context.Context, path, description string, isPrivate bool) (*models.Entry, error) {
	f.lastPath = path
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.entry
	cp.IsPrivate = isPrivate
	if description != "" {
		cp.Description = &description
	}
	return &cp, nil
}
func (f *fakeClient) Update(_ context.Context, _ string, description *string, _ *bool) (*models.Entry, error) {
	f.lastDesc = description
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.entry
	cp.Description = description
	return &cp, nil
}
func (f *fakeClient) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}
func (f *fakeClient) Download(_ context.Context, _ string, w io.Writer) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return io.Copy(w, strings.NewReader(f.content))
}
