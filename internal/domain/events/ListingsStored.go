package events

import (
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
)

var ListingsStoredTopic = "ListingsStoredEvent"

// ListingsStored is published after a scrape page has been persisted.
type ListingsStored struct {
	Search string
	Counts models.UpsertCounts
	IDs    []string
}
