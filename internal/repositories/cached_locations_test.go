package repositories

import (
	"testing"

	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(location string) ([]string, error) {
	args := m.Called(location)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

func (m *mockResolver) ResolveSafe(location string) []string {
	args := m.Called(location)
	return args.Get(0).([]string)
}

func TestCachedLocations_HitsResolverOnce(t *testing.T) {
	assert := assert.New(t)

	resolver := &mockResolver{}
	resolver.On("Resolve", "Zürich").Return([]string{"261"}, nil).Once()
	cached := NewCachedLocations(resolver)

	for i := 0; i < 3; i++ {
		codes, err := cached.Resolve("Zürich")
		assert.NoError(err)
		assert.Equal([]string{"261"}, codes)
	}
	resolver.AssertNumberOfCalls(t, "Resolve", 1)
}

func TestCachedLocations_CachesMisses(t *testing.T) {
	assert := assert.New(t)

	resolver := &mockResolver{}
	resolver.On("Resolve", "Atlantis").Return(nil, &errs.LocationNotFoundError{Location: "Atlantis"}).Once()
	cached := NewCachedLocations(resolver)

	_, err := cached.Resolve("Atlantis")
	var notFound *errs.LocationNotFoundError
	assert.ErrorAs(err, &notFound)

	_, err = cached.Resolve("Atlantis")
	assert.ErrorAs(err, &notFound)
	assert.Equal([]string{}, cached.ResolveSafe("Atlantis"))
	resolver.AssertNumberOfCalls(t, "Resolve", 1)
}

func TestCachedLocations_ReturnsCopies(t *testing.T) {
	resolver := &mockResolver{}
	resolver.On("Resolve", "Buchs").Return([]string{"83", "3271", "4003"}, nil).Once()
	cached := NewCachedLocations(resolver)

	codes, _ := cached.Resolve("Buchs")
	codes[0] = "changed"

	again, _ := cached.Resolve("Buchs")
	assert.Equal(t, []string{"83", "3271", "4003"}, again)
}
