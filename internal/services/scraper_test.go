package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/swiss-jobs/internal/domain/events"
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/entities"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return "job_room"
}

func (m *mockProvider) Search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error) {
	args := m.Called(ctx, criteria)
	result, _ := args.Get(0).(models.SearchResult)
	return result, args.Error(1)
}

func (m *mockProvider) GetDetails(ctx context.Context, id, language string) (models.JobListing, error) {
	args := m.Called(ctx, id, language)
	listing, _ := args.Get(0).(models.JobListing)
	return listing, args.Error(1)
}

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) UpsertJobs(ctx context.Context, listings []models.JobListing) (models.UpsertCounts, error) {
	args := m.Called(ctx, listings)
	return args.Get(0).(models.UpsertCounts), args.Error(1)
}

type mockSearches struct {
	mock.Mock
}

func (m *mockSearches) Get(ctx context.Context, limit int, offset int) ([]entities.SavedSearch, error) {
	args := m.Called(ctx, limit, offset)
	searches, _ := args.Get(0).([]entities.SavedSearch)
	return searches, args.Error(1)
}

func (m *mockSearches) UpdateLastRun(ctx context.Context, id int, runAt time.Time) error {
	return m.Called(ctx, id, runAt).Error(0)
}

func pageOf(page, totalPages int, ids ...string) models.SearchResult {
	items := make([]models.JobListing, 0, len(ids))
	for _, id := range ids {
		items = append(items, sampleListing(id))
	}
	return models.SearchResult{Items: items, Page: page, PageSize: len(ids), TotalPages: totalPages, Source: "job_room"}
}

func onPage(page int) any {
	return mock.MatchedBy(func(c models.SearchCriteria) bool { return c.Page == page })
}

func TestScraper_PagesUntilLastPage(t *testing.T) {
	assert := assert.New(t)

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, onPage(0)).Return(pageOf(0, 2, "a", "b"), nil).Once()
	provider.On("Search", mock.Anything, onPage(1)).Return(pageOf(1, 2, "c"), nil).Once()

	jobs := &mockJobs{}
	jobs.On("UpsertJobs", mock.Anything, mock.Anything).Return(models.UpsertCounts{Inserted: 1, Unchanged: 1}, nil)

	var mu sync.Mutex
	var stored []events.ListingsStored
	bus := EventBus.New()
	require.NoError(t, bus.Subscribe(events.ListingsStoredTopic, func(event events.ListingsStored) {
		mu.Lock()
		defer mu.Unlock()
		stored = append(stored, event)
	}))

	search := entities.NewSavedSearch("go", "golang", "Zürich", nil, models.ContractAny, 7, 5)
	scraper := NewScraper(bus, provider, nil, jobs, ScraperConfig{PageSize: 2, Searches: []entities.SavedSearch{*search}})

	report, err := scraper.RunOnce(context.Background())
	assert.NoError(err)
	assert.Equal(ScrapeReport{
		Searches: 1,
		Pages:    2,
		Fetched:  3,
		Counts:   models.UpsertCounts{Inserted: 2, Unchanged: 2},
	}, report)

	provider.AssertNumberOfCalls(t, "Search", 2)
	require.Len(t, stored, 2)
	assert.Equal("go", stored[0].Search)
	assert.Equal([]string{"a", "b"}, stored[0].IDs)
	assert.Equal([]string{"c"}, stored[1].IDs)
}

func TestScraper_ListingsWithoutIDAreNotAnnounced(t *testing.T) {
	assert := assert.New(t)

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return(pageOf(0, 1, "a", "", "c"), nil)
	jobs := &mockJobs{}
	jobs.On("UpsertJobs", mock.Anything, mock.Anything).Return(models.UpsertCounts{Inserted: 2, Skipped: 1}, nil)

	var stored []events.ListingsStored
	bus := EventBus.New()
	require.NoError(t, bus.Subscribe(events.ListingsStoredTopic, func(event events.ListingsStored) {
		stored = append(stored, event)
	}))

	search := entities.NewSavedSearch("go", "golang", "", nil, models.ContractAny, 7, 1)
	scraper := NewScraper(bus, provider, nil, jobs, ScraperConfig{Searches: []entities.SavedSearch{*search}})

	report, err := scraper.RunOnce(context.Background())
	assert.NoError(err)
	assert.Equal(models.UpsertCounts{Inserted: 2, Skipped: 1}, report.Counts)
	require.Len(t, stored, 1)
	assert.Equal([]string{"a", "c"}, stored[0].IDs)
}

func TestScraper_StopsOnMaxPages(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return(pageOf(0, 100, "a"), nil)
	jobs := &mockJobs{}
	jobs.On("UpsertJobs", mock.Anything, mock.Anything).Return(models.UpsertCounts{Unchanged: 1}, nil)

	search := entities.NewSavedSearch("go", "golang", "", nil, models.ContractAny, 7, 3)
	scraper := NewScraper(nil, provider, nil, jobs, ScraperConfig{PageSize: 1, Searches: []entities.SavedSearch{*search}})

	report, err := scraper.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, report.Pages)
	provider.AssertNumberOfCalls(t, "Search", 3)
}

func TestScraper_RateLimitEndsSearch(t *testing.T) {
	assert := assert.New(t)

	limited := errs.NewProviderError("job_room", "Search failed", &errs.RateLimitError{Provider: "job_room"})
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, onPage(0)).Return(pageOf(0, 5, "a"), nil).Once()
	provider.On("Search", mock.Anything, onPage(1)).Return(nil, limited).Once()
	jobs := &mockJobs{}
	jobs.On("UpsertJobs", mock.Anything, mock.Anything).Return(models.UpsertCounts{Inserted: 1}, nil)

	search := entities.NewSavedSearch("go", "golang", "", nil, models.ContractAny, 7, 5)
	scraper := NewScraper(nil, provider, nil, jobs, ScraperConfig{PageSize: 1, Searches: []entities.SavedSearch{*search}})

	report, err := scraper.RunOnce(context.Background())
	assert.NoError(err)
	assert.Equal(1, report.Failed)
	assert.Equal(1, report.Pages)
	provider.AssertNumberOfCalls(t, "Search", 2)
}

func TestScraper_RunsStoredSearchesAndRecordsLastRun(t *testing.T) {
	assert := assert.New(t)

	stored := entities.NewSavedSearch("stored", "koch", "Bern", []string{"BE"}, models.ContractPermanent, 3, 1)
	stored.ID = 4

	searches := &mockSearches{}
	searches.On("Get", mock.Anything, 20, 0).Return([]entities.SavedSearch{*stored}, nil).Once()
	searches.On("UpdateLastRun", mock.Anything, 4, mock.Anything).Return(nil).Once()

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.MatchedBy(func(c models.SearchCriteria) bool {
		return c.Query == "koch" && c.Location == "Bern" && c.ContractType == models.ContractPermanent &&
			len(c.CantonCodes) == 1 && c.CantonCodes[0] == "BE" && c.PostedWithinDays == 3
	})).Return(pageOf(0, 1, "k1"), nil).Once()

	jobs := &mockJobs{}
	jobs.On("UpsertJobs", mock.Anything, mock.Anything).Return(models.UpsertCounts{Updated: 1}, nil)

	report, err := NewScraper(nil, provider, searches, jobs, ScraperConfig{}).RunOnce(context.Background())
	assert.NoError(err)
	assert.Equal(1, report.Searches)
	assert.Equal(models.UpsertCounts{Updated: 1}, report.Counts)
	searches.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestScraper_FetchDetailsOncePerContent(t *testing.T) {
	assert := assert.New(t)

	detailed := sampleListing("a")
	detailed.Title = "Detailed"

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return(pageOf(0, 1, "a"), nil)
	provider.On("GetDetails", mock.Anything, "a", "en").Return(detailed, nil).Once()

	jobs := &mockJobs{}
	jobs.On("UpsertJobs", mock.Anything, mock.MatchedBy(func(listings []models.JobListing) bool {
		return len(listings) == 1 && listings[0].Title == "Detailed"
	})).Return(models.UpsertCounts{Inserted: 1}, nil)

	search := entities.NewSavedSearch("go", "golang", "", nil, models.ContractAny, 7, 1)
	scraper := NewScraper(nil, provider, nil, jobs, ScraperConfig{FetchDetails: true, Searches: []entities.SavedSearch{*search}})

	for i := 0; i < 2; i++ {
		_, err := scraper.RunOnce(context.Background())
		assert.NoError(err)
	}
	provider.AssertNumberOfCalls(t, "GetDetails", 1)
	jobs.AssertNumberOfCalls(t, "UpsertJobs", 2)
}

func TestScraper_RejectsOverlappingRuns(t *testing.T) {
	scraper := NewScraper(nil, &mockProvider{}, nil, &mockJobs{}, ScraperConfig{})
	scraper.running.Lock()
	defer scraper.running.Unlock()

	_, err := scraper.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrScrapeInProgress)
}

func TestScraper_InvalidSchedule(t *testing.T) {
	scraper := NewScraper(nil, &mockProvider{}, nil, &mockJobs{}, ScraperConfig{})
	assert.Error(t, scraper.Schedule("every tuesday"))
}
