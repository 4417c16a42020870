package repositories

import (
	"strings"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/clients/jobroom"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// CachedLocations memoizes lookups of a location resolver, misses included.
type CachedLocations struct {
	resolver jobroom.LocationResolver
	cache    *gocache.Cache
}

var _ jobroom.LocationResolver = (*CachedLocations)(nil)

func NewCachedLocations(resolver jobroom.LocationResolver) *CachedLocations {
	return &CachedLocations{resolver: resolver, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c CachedLocations) Resolve(location string) ([]string, error) {
	key := strings.TrimSpace(location)
	if value, found := c.cache.Get(key); found {
		codes := value.([]string)
		if len(codes) == 0 {
			return nil, &errs.LocationNotFoundError{Location: location}
		}
		return append([]string(nil), codes...), nil
	}

	codes, err := c.resolver.Resolve(location)
	if err != nil {
		var notFound *errs.LocationNotFoundError
		if errors.As(err, &notFound) {
			c.cache.SetDefault(key, []string{})
		}
		return nil, err
	}

	c.cache.SetDefault(key, append([]string(nil), codes...))
	return codes, nil
}

func (c CachedLocations) ResolveSafe(location string) []string {
	codes, err := c.Resolve(location)
	if err != nil {
		return []string{}
	}
	return codes
}
