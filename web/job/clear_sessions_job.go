// Package job holds the scheduled maintenance jobs run by the web
// server's cron.
package job

import (
	"clubboard/logger"
	"clubboard/web/store"
)

// ClearSessionsJob purges expired rows from the sessions table.
type ClearSessionsJob struct {
	store *store.GormStore
}

func NewClearSessionsJob(store *store.GormStore) *ClearSessionsJob {
	return &ClearSessionsJob{store: store}
}

// Run implements cron.Job.
func (j *ClearSessionsJob) Run() {
	n, err := j.store.PurgeExpired()
	if err != nil {
		logger.Warning("purge expired sessions:", err)
		return
	}
	if n > 0 {
		logger.Debugf("purged %d expired sessions", n)
	}
}
