package refresh

import (
	"context"
	"log"
	"time"

	"github.com/cha-ryne/ratings-sync/internal/ratings/store"
	"github.com/robfig/cron/v3"
)

// loadBudget bounds one background reload across all candidates.
const loadBudget = 90 * time.Second

// Scheduler reloads the ratings collection on a cron schedule so the local
// view converges with the backend whenever it comes back.
type Scheduler struct {
	spec  string
	store *store.Store
	cron  *cron.Cron
}

// NewScheduler creates a Scheduler with a cron spec (seconds field included).
func NewScheduler(spec string, st *store.Store) *Scheduler {
	return &Scheduler{spec: spec, store: st}
}

// Start registers the refresh job and starts the cron runner.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadBudget)
		defer cancel()

		if err := s.store.Load(ctx); err != nil {
			log.Printf("[warn] operation=refresh ratings reload failed: %v", err)
			return
		}
		log.Printf("[info] operation=refresh ratings reloaded at %s", time.Now().Format(time.RFC1123))
	})
	if err != nil {
		return err
	}

	log.Printf("Refresh scheduler started (spec %q)", s.spec)
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the cron runner; running jobs finish on their own.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
