package services

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/swiss-jobs/internal/domain/events"
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/entities"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/maxaizer/swiss-jobs/internal/logger"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var ErrScrapeInProgress = errors.New("scrape already in progress")

type searchRepository interface {
	Get(ctx context.Context, limit int, offset int) ([]entities.SavedSearch, error)
	UpdateLastRun(ctx context.Context, id int, runAt time.Time) error
}

type jobRepository interface {
	UpsertJobs(ctx context.Context, listings []models.JobListing) (models.UpsertCounts, error)
}

type searchProvider interface {
	detailsProvider
	Name() string
	Search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error)
}

type ScraperConfig struct {
	PageSize     int
	MaxPages     int
	FetchDetails bool
	// Searches run on every pass in addition to the stored ones.
	Searches []entities.SavedSearch
}

type ScrapeReport struct {
	Searches int                 `json:"searches"`
	Pages    int                 `json:"pages"`
	Fetched  int                 `json:"fetched"`
	Failed   int                 `json:"failed"`
	Counts   models.UpsertCounts `json:"counts"`
}

func (r *ScrapeReport) add(counts models.UpsertCounts) {
	r.Counts.Inserted += counts.Inserted
	r.Counts.Updated += counts.Updated
	r.Counts.Unchanged += counts.Unchanged
	r.Counts.Skipped += counts.Skipped
}

// Scraper pages through every saved search, stores what it finds and
// announces stored pages on the bus.
type Scraper struct {
	bus      EventBus.Bus
	provider searchProvider
	searches searchRepository
	jobs     jobRepository
	details  *detailsCache
	cfg      ScraperConfig
	cron     *cron.Cron
	running  sync.Mutex
}

func NewScraper(bus EventBus.Bus, provider searchProvider, searchRepo searchRepository,
	jobRepo jobRepository, cfg ScraperConfig) *Scraper {

	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}

	return &Scraper{
		bus:      bus,
		provider: provider,
		searches: searchRepo,
		jobs:     jobRepo,
		details:  newDetailsCache(provider, gocache.New(6*time.Hour, time.Hour)),
		cfg:      cfg,
	}
}

// Schedule runs a pass on every tick of the cron expression until Stop.
func (s *Scraper) Schedule(expr string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(expr, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Warnf("scheduled scrape skipped: %v", err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid scrape schedule %q", expr)
	}

	s.cron.Start()
	log.Infof("scraper scheduled with %q", expr)
	return nil
}

func (s *Scraper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scraper) RunOnce(ctx context.Context) (ScrapeReport, error) {
	if !s.running.TryLock() {
		return ScrapeReport{}, ErrScrapeInProgress
	}
	defer s.running.Unlock()

	startTime := time.Now()
	log.Infof("running scrape at %v", startTime)

	var report ScrapeReport
	for _, search := range s.cfg.Searches {
		s.runSearch(ctx, search, &report)
	}

	if s.searches != nil {
		s.runStoredSearches(ctx, &report)
	}

	executionTime := time.Since(startTime)
	metrics.ScrapeRunDuration.Observe(executionTime.Seconds())
	log.Infof("scrape ended after %v: %d searches, %d listings, %+v",
		executionTime, report.Searches, report.Fetched, report.Counts)
	return report, ctx.Err()
}

func (s *Scraper) runStoredSearches(ctx context.Context, report *ScrapeReport) {

	const pageSize = 20

	for offset := 0; ; offset += pageSize {
		if ctx.Err() != nil {
			return
		}

		searches, err := s.searches.Get(ctx, pageSize, offset)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to get saved searches: %v", err)
			return
		}

		for _, search := range searches {
			s.runSearch(ctx, search, report)

			if search.ID != 0 {
				if err = s.searches.UpdateLastRun(ctx, search.ID, time.Now()); err != nil {
					log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to update last run: %v", err)
				}
			}
		}

		if len(searches) < pageSize {
			return
		}
	}
}

func (s *Scraper) runSearch(ctx context.Context, search entities.SavedSearch, report *ScrapeReport) {

	report.Searches++
	maxPages := search.MaxPages
	if maxPages <= 0 {
		maxPages = s.cfg.MaxPages
	}

	fetched := 0
	for page := 0; page < maxPages; page++ {

		select {
		case <-ctx.Done():
			log.Infof("scrape canceled for search %q", search.Name)
			return
		default:
		}

		criteria, err := search.Criteria(page, s.cfg.PageSize)
		if err != nil {
			log.Errorf("invalid saved search %q: %v", search.Name, err)
			report.Failed++
			return
		}

		result, err := s.provider.Search(ctx, criteria)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeUpstreamApi).
				Errorf("search %q failed on page %d: %v", search.Name, page, err)
			report.Failed++
			if errs.IsRateLimit(err) || errors.Is(err, errs.ErrSessionClosed) {
				return
			}
			continue
		}

		report.Pages++
		fetched += len(result.Items)
		s.storePage(ctx, search, s.withDetails(ctx, result.Items, criteria.Language), report)

		if !result.HasMore() {
			break
		}
	}

	report.Fetched += fetched
	log.Infof("fetched total %v listings for search %q", fetched, search.Name)
}

func (s *Scraper) withDetails(ctx context.Context, items []models.JobListing, language string) []models.JobListing {
	if !s.cfg.FetchDetails {
		return items
	}

	return lo.Map(items, func(item models.JobListing, _ int) models.JobListing {
		if item.ID == "" {
			return item
		}
		listing, err := s.details.getDetails(ctx, item, language)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeUpstreamApi).
				Errorf("failed to get details of %s: %v", item.ID, err)
			return item
		}
		return *listing
	})
}

func (s *Scraper) storePage(ctx context.Context, search entities.SavedSearch, items []models.JobListing, report *ScrapeReport) {
	if len(items) == 0 {
		return
	}

	counts, err := s.jobs.UpsertJobs(ctx, items)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to store listings: %v", err)
		report.Failed++
		return
	}
	report.add(counts)

	if s.bus != nil {
		s.bus.Publish(events.ListingsStoredTopic, events.ListingsStored{
			Search: search.Name,
			Counts: counts,
			IDs:    lo.Compact(lo.Map(items, func(item models.JobListing, _ int) string { return item.ID })),
		})
	}
}
