package services

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/swiss-jobs/internal/domain/events"
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/entities"
	"github.com/maxaizer/swiss-jobs/internal/logger"
	log "github.com/sirupsen/logrus"
)

type enrichmentRepository interface {
	GetUnprocessed(ctx context.Context, limit int, offset int) ([]entities.StoredJob, error)
	SaveEnrichment(ctx context.Context, enrichment models.Enrichment) error
}

type listingEnricher interface {
	Enrich(ctx context.Context, listing models.JobListing, features []models.AIFeature) models.Enrichment
}

// Enricher drains the stored jobs that still need an AI pass. Degraded results
// are not saved, so those jobs are picked up again on the next pass.
type Enricher struct {
	service   listingEnricher
	jobs      enrichmentRepository
	batchSize int
	mu        sync.Mutex
}

func NewEnricher(service listingEnricher, jobs enrichmentRepository, batchSize int) *Enricher {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Enricher{service: service, jobs: jobs, batchSize: batchSize}
}

// Subscribe enriches in the background whenever new or changed listings are stored.
func (e *Enricher) Subscribe(bus EventBus.Bus) error {
	return bus.SubscribeAsync(events.ListingsStoredTopic, e.onListingsStored, true)
}

func (e *Enricher) onListingsStored(event events.ListingsStored) {
	if event.Counts.Inserted+event.Counts.Updated == 0 {
		return
	}
	if _, err := e.ProcessPending(context.Background()); err != nil {
		log.Errorf("enrichment after search %q stopped: %v", event.Search, err)
	}
}

// ProcessPending returns the number of jobs whose enrichment was saved.
func (e *Enricher) ProcessPending(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	saved, skipped := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		jobs, err := e.jobs.GetUnprocessed(ctx, e.batchSize, skipped)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to get unprocessed jobs: %v", err)
			return saved, err
		}

		for _, job := range jobs {
			listing, err := job.Listing()
			if err != nil {
				log.Warnf("skipping job %s: %v", job.ID, err)
				skipped++
				continue
			}

			enrichment := e.service.Enrich(ctx, listing, nil)
			if enrichment.Degraded {
				skipped++
				continue
			}

			if err = e.jobs.SaveEnrichment(ctx, enrichment); err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to save enrichment: %v", err)
				return saved, err
			}
			saved++
		}

		if len(jobs) < e.batchSize {
			break
		}
	}

	log.Infof("enriched %d jobs, %d left for a later pass", saved, skipped)
	return saved, nil
}
