// Package janitor runs scheduled maintenance. Soft-deleted code batches stay
// queryable for audit and export; this hard-purges them once the retention
// window lapses.
package janitor

import (
	"log"
	"time"

	"cbt-portal/internal/testcode"

	"github.com/robfig/cron/v3"
)

const DefaultRetentionDays = 90

type Janitor struct {
	cron      *cron.Cron
	codes     *testcode.Service
	retention time.Duration
}

func New(codes *testcode.Service, retentionDays int) *Janitor {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Janitor{
		cron:      cron.New(),
		codes:     codes,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start schedules the daily purge and begins the cron loop.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc("@daily", j.purge); err != nil {
		return err
	}
	j.cron.Start()
	log.Printf("Janitor started; purging soft-deleted batches older than %s", j.retention)
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) purge() {
	purged, err := j.codes.PurgeDeleted(j.retention)
	if err != nil {
		log.Printf("Error purging soft-deleted batches: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Purged %d soft-deleted rows past retention", purged)
	}
}
