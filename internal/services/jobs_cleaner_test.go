package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCleanupRepo struct {
	mock.Mock
}

func (m *mockCleanupRepo) RemoveOldJobs(ctx context.Context, expirationTime time.Time) (int64, error) {
	args := m.Called(ctx, expirationTime)
	return args.Get(0).(int64), args.Error(1)
}

func TestJobsCleaner_RemovesByExpiration(t *testing.T) {
	repo := &mockCleanupRepo{}
	repo.On("RemoveOldJobs", mock.Anything, mock.MatchedBy(func(expiration time.Time) bool {
		age := time.Since(expiration)
		return age > 29*24*time.Hour && age < 31*24*time.Hour
	})).Return(int64(4), nil)

	cleaner, err := NewJobsCleaner(repo, 30)
	assert.NoError(t, err)

	removed, err := cleaner.CleanOldJobs(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}

func TestJobsCleaner_PropagatesErrors(t *testing.T) {
	repo := &mockCleanupRepo{}
	repo.On("RemoveOldJobs", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	cleaner, err := NewJobsCleaner(repo, 1)
	assert.NoError(t, err)

	_, err = cleaner.CleanOldJobs(context.Background())
	assert.Error(t, err)
}

func TestJobsCleaner_RejectsNonPositiveExpiration(t *testing.T) {
	_, err := NewJobsCleaner(&mockCleanupRepo{}, 0)
	assert.Error(t, err)
}
