package providers

import (
	"context"
	"sort"
	"sync"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/pkg/errors"
)

// Provider is a job source. Implementations return *errs.ProviderError from
// Search and GetDetails.
type Provider interface {
	Name() string
	DisplayName() string
	Capabilities() models.ProviderCapabilities
	Search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error)
	GetDetails(ctx context.Context, id, language string) (models.JobListing, error)
	HealthCheck(ctx context.Context) models.ProviderHealth
	Close() error
}

type Factory func() (Provider, error)

var ErrUnknownProvider = errors.New("unknown provider")

// Registry maps provider names to factories. Registration happens at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" || factory == nil {
		return errors.New("provider name and factory are required")
	}
	if _, exists := r.factories[name]; exists {
		return errors.Errorf("provider %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Get builds a new provider instance. The caller owns it and must Close it.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownProvider, "%q", name)
	}
	return factory()
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
