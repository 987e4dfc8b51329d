package sweeper

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	cron "github.com/robfig/cron/v3"

	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/schemacache"
	"github.com/helmdeck/helmdeck/pkg/store"
)

var job *cron.Cron
var mtx sync.Mutex

// Start schedules the background maintenance job: expiring idle edit
// sessions and pruning stale schema-cache rows. Calling Start again
// replaces the existing schedule.
func Start(sessionTTL, schemaCacheMaxAge time.Duration) error {
	mtx.Lock()
	defer mtx.Unlock()

	if job != nil {
		entries := job.Entries()
		for _, entry := range entries {
			job.Remove(entry.ID)
		}
	} else {
		job = cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
		))
	}

	_, err := job.AddFunc("@every 5m", func() {
		expired := store.GetStore().ExpireSessions(sessionTTL)
		if expired > 0 {
			logger.Infof("expired %d idle edit sessions", expired)
		}

		cache := schemacache.GetCache()
		if cache == nil {
			return
		}
		pruned, err := cache.Prune(schemaCacheMaxAge)
		if err != nil {
			logger.Error(errors.Wrap(err, "failed to prune schema cache"))
			return
		}
		if pruned > 0 {
			logger.Infof("pruned %d stale schema cache records", pruned)
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to add sweep func")
	}

	job.Start()

	return nil
}

// Stop halts the maintenance schedule.
func Stop() {
	mtx.Lock()
	defer mtx.Unlock()

	if job != nil {
		job.Stop()
	}
}
