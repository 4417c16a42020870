package services

import (
	"context"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

type detailsProvider interface {
	GetDetails(ctx context.Context, id, language string) (models.JobListing, error)
}

// detailsCache keeps fetched advertisements keyed by the content of the
// search hit they were fetched for, so an unchanged hit is never fetched twice.
type detailsCache struct {
	provider detailsProvider
	cache    *gocache.Cache
}

func newDetailsCache(provider detailsProvider, cache *gocache.Cache) *detailsCache {
	return &detailsCache{
		provider: provider,
		cache:    cache,
	}
}

func (h *detailsCache) getDetails(ctx context.Context, hit models.JobListing, language string) (*models.JobListing, error) {

	key := detailsCacheKey(hit, language)
	if cached, found := h.cache.Get(key); found {
		listing := cached.(models.JobListing)
		return &listing, nil
	}

	listing, err := h.provider.GetDetails(ctx, hit.ID, language)
	if err != nil {
		return nil, err
	}

	if cacheErr := h.cache.Add(key, listing, gocache.DefaultExpiration); cacheErr != nil {
		log.Debugf("details of %s already cached: %v", hit.ID, cacheErr)
	}
	return &listing, nil
}

func detailsCacheKey(hit models.JobListing, language string) string {
	return language + ":" + hit.ID + ":" + hit.ContentHash()
}
