package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/blobstore"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/repomanager"
	"github.com/go-co-op/gocron"
)

// Sweeper removes blobs that no record refers to, which is what a crash
// between the blob write and the record insert of an upload leaves behind.
// Blobs younger than the grace period are skipped so uploads in flight are
// never touched.
type Sweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	log         logging.Logger
	grace       time.Duration
	now         func() time.Time

	scheduler *gocron.Scheduler
}

func NewSweeper(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, log logging.Logger, grace time.Duration) *Sweeper {
	return &Sweeper{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		log:         log.With("module", "sweeper"),
		grace:       grace,
		now:         time.Now,
	}
}

// Sweep runs one pass and returns how many blobs were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return 0, err
	}

	names, err := s.repomanager.Entries(s.db).ListStoredNames(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, b := range blobs {
		if _, ok := known[b.Name]; ok {
			continue
		}
		if b.ModTime.After(cutoff) {
			continue
		}
		if err := s.blobs.Delete(ctx, b.Name); err != nil {
			s.log.Warn(ctx, "orphan delete failed", "stored_name", b.Name, "error", err)
			continue
		}
		s.log.Info(ctx, "orphan blob removed", "stored_name", b.Name, "size", b.Size)
		removed++
	}
	return removed, nil
}

// Start schedules Sweep every interval until Stop is called.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.log.Error(ctx, "sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	scheduler.StartAsync()
	s.scheduler = scheduler
	s.log.Info(ctx, "orphan sweeper started", "interval", interval.String(), "grace", s.grace.String())
	return nil
}

func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
}
