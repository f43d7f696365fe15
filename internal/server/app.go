// Package server wires the mediavault components together and runs them:
// logging, the database and its migrations, the blob backend, the services,
// the optional orphan sweeper and the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/auth"
	"github.com/dmitrijs2005/mediavault/internal/server/blobstore"
	"github.com/dmitrijs2005/mediavault/internal/server/config"
	"github.com/dmitrijs2005/mediavault/internal/server/httpapi"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediavault/internal/server/services"
	"github.com/gin-gonic/gin"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	db        *sql.DB
	server    *httpapi.Server
	sweeper   *services.Sweeper
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		File:   c.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	if logging.ParseLevel(c.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{config: c, logger: logger, logCloser: logCloser}
	if err := app.init(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	m := newRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		return fmt.Errorf("blob store init error: %w", err)
	}

	tokens, err := auth.NewTokenService(c.SecretKey, c.TokenValidityDuration)
	if err != nil {
		return err
	}

	sessionSecret := c.SessionSecret
	if sessionSecret == "" {
		if sessionSecret, err = common.MakeRandHexString(32); err != nil {
			return err
		}
		app.logger.Warn(ctx, "session secret not configured, sessions will not survive a restart")
	}

	us := services.NewUserService(db, m, tokens, app.logger)
	vs := services.NewVaultService(db, m, blobs, app.logger, services.VaultOptions{
		MaxUploadSize:     c.MaxUploadSize,
		ServeRequireOwner: c.ServeRequireOwner,
	})

	if c.SweepInterval > 0 {
		app.sweeper = services.NewSweeper(db, m, blobs, app.logger, c.SweepGracePeriod)
	}

	app.server = httpapi.NewServer(httpapi.Options{
		Address:            c.EndpointAddrHTTP,
		AllowedOrigins:     c.AllowedOrigins,
		RateLimitPerSecond: c.RateLimitPerSecond,
		RateLimitBurst:     c.RateLimitBurst,
		SessionSecret:      sessionSecret,
		SecureCookies:      c.SecureCookies,
		TokenTTL:           c.TokenValidityDuration,
		MaxUploadSize:      c.MaxUploadSize,
	}, app.logger, us, vs, tokens, db)

	return nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	s3opts := blobstore.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	}
	switch c.BlobBackend {
	case config.BlobBackendFS:
		return blobstore.NewFSStore(c.UploadDir)
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, s3opts)
	case config.BlobBackendMinio:
		return blobstore.NewMinioStore(ctx, s3opts)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close failed", "error", err)
		}
	}
	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.sweeper != nil {
		if err := app.sweeper.Start(ctx, app.config.SweepInterval); err != nil {
			app.logger.Error(ctx, "sweeper start failed", "error", err)
		} else {
			defer app.sweeper.Stop()
		}
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
}
