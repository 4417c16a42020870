package services

import (
	"context"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type JobsCleanupRepository interface {
	RemoveOldJobs(ctx context.Context, expirationTime time.Time) (int64, error)
}

// JobsCleaner removes stored jobs that no scrape has returned for a while.
type JobsCleaner struct {
	jobs                 JobsCleanupRepository
	cron                 *cron.Cron
	expirationTimeInDays int
}

func NewJobsCleaner(jobs JobsCleanupRepository, expirationInDays int) (*JobsCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	jc := &JobsCleaner{
		jobs:                 jobs,
		cron:                 cron.New(),
		expirationTimeInDays: expirationInDays,
	}

	_, err := jc.cron.AddFunc("0 0 * * *", func() { _, _ = jc.CleanOldJobs(context.Background()) })
	if err != nil {
		return nil, err
	}

	return jc, nil
}

func (jc *JobsCleaner) Start() {
	jc.cron.Start()
	log.Infof("jobs cleaner started, expiration in days: %d", jc.expirationTimeInDays)
}

func (jc *JobsCleaner) Stop() {
	<-jc.cron.Stop().Done()
}

func (jc *JobsCleaner) CleanOldJobs(ctx context.Context) (int64, error) {
	expirationTime := time.Now().Add(-time.Duration(jc.expirationTimeInDays) * 24 * time.Hour)
	rowsAffected, err := jc.jobs.RemoveOldJobs(ctx, expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("Failed to clean old jobs: %v", err)
		return 0, err
	}
	log.Infof("Old jobs were cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	return rowsAffected, nil
}
