package server

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/server/blobstore"
	"github.com/dmitrijs2005/mediavault/internal/server/config"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "s3cr3t"
	c.UploadDir = t.TempDir()
	c.LogLevel = "error"
	return c
}

// stubDeps swaps the database and repository seams for the duration of t.
func stubDeps(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	prevOpen, prevManager := openDB, newRepositoryManager
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = repomanager.NewInMemoryRepositoryManager
	t.Cleanup(func() {
		openDB, newRepositoryManager = prevOpen, prevManager
	})
	return mock
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c)
	require.ErrorIs(t, err, common.ErrMissingSecret)
}

func TestNewApp_WiresHTTPServer(t *testing.T) {
	mock := stubDeps(t)
	c := testConfig(t)

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, app.sweeper)

	rec := httptest.NewRecorder()
	app.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectClose()
	app.close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_SweeperWhenConfigured(t *testing.T) {
	stubDeps(t)
	c := testConfig(t)
	c.SweepInterval = time.Minute

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.sweeper)
}

func TestRun_StopsOnCancel(t *testing.T) {
	mock := stubDeps(t)
	mock.ExpectClose()
	c := testConfig(t)
	c.EndpointAddrHTTP = "127.0.0.1:0"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewBlobStore(t *testing.T) {
	c := testConfig(t)

	s, err := newBlobStore(context.Background(), c)
	require.NoError(t, err)
	fs, ok := s.(*blobstore.FSStore)
	require.True(t, ok)
	assert.Equal(t, c.UploadDir, fs.Dir())

	c.BlobBackend = "tape"
	_, err = newBlobStore(context.Background(), c)
	assert.Error(t, err)
}
