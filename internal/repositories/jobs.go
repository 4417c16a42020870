package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/entities"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type upsertResult string

const (
	resultInserted  upsertResult = "inserted"
	resultUpdated   upsertResult = "updated"
	resultUnchanged upsertResult = "unchanged"
	resultSkipped   upsertResult = "skipped"
)

var enrichmentColumns = []string{
	"TitleDE", "TitleFR", "TitleIT", "TitleEN",
	"DescriptionDE", "DescriptionFR", "DescriptionIT", "DescriptionEN",
	"RequiredLanguages", "ExperienceLevel", "YearsExperienceMin", "YearsExperienceMax",
	"Education", "SemanticKeywords", "AIProcessedAt",
}

type Jobs struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db, now: time.Now}
}

// UpsertJobs stores listings keyed by id. A listing whose content hash is
// unchanged is left alone, so its enrichment stays valid. Listings without an
// id are skipped and counted, the rest of the batch is still stored.
func (repo *Jobs) UpsertJobs(ctx context.Context, listings []models.JobListing) (models.UpsertCounts, error) {
	var counts models.UpsertCounts
	if len(listings) == 0 {
		return counts, nil
	}

	now := repo.now().UTC()
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, listing := range listings {
			if listing.ID == "" {
				log.Warnf("skipping %s listing without id: %q", listing.Source, listing.Title)
				counts.Skipped++
				continue
			}

			result, err := upsertJob(tx, listing, now)
			if err != nil {
				return err
			}

			switch result {
			case resultInserted:
				counts.Inserted++
			case resultUpdated:
				counts.Updated++
			default:
				counts.Unchanged++
			}
		}
		return nil
	})
	if err != nil {
		return models.UpsertCounts{}, err
	}

	metrics.StoredListingsCounter.WithLabelValues(string(resultInserted)).Add(float64(counts.Inserted))
	metrics.StoredListingsCounter.WithLabelValues(string(resultUpdated)).Add(float64(counts.Updated))
	metrics.StoredListingsCounter.WithLabelValues(string(resultUnchanged)).Add(float64(counts.Unchanged))
	metrics.StoredListingsCounter.WithLabelValues(string(resultSkipped)).Add(float64(counts.Skipped))
	return counts, nil
}

func upsertJob(tx *gorm.DB, listing models.JobListing, now time.Time) (upsertResult, error) {
	row, err := newStoredJob(listing, now)
	if err != nil {
		return "", err
	}

	var existing entities.StoredJob
	found := tx.Select("id", "content_hash").Where("id = ?", listing.ID).Limit(1).Find(&existing)
	if found.Error != nil {
		return "", fmt.Errorf("failed to load job %s: %w", listing.ID, found.Error)
	}
	if found.RowsAffected == 0 {
		if err = tx.Create(&row).Error; err != nil {
			return "", fmt.Errorf("failed to insert job %s: %w", listing.ID, err)
		}
		return resultInserted, nil
	}

	if existing.ContentHash == row.ContentHash {
		err = tx.Model(&entities.StoredJob{}).Where("id = ?", listing.ID).
			Update("last_seen_at", now).Error
		if err != nil {
			return "", fmt.Errorf("failed to touch job %s: %w", listing.ID, err)
		}
		return resultUnchanged, nil
	}

	err = tx.Model(&entities.StoredJob{}).Where("id = ?", listing.ID).
		Updates(map[string]any{
			"source_platform": row.SourcePlatform,
			"title":           row.Title,
			"description":     row.Description,
			"company_name":    row.CompanyName,
			"city":            row.City,
			"canton_code":     row.CantonCode,
			"external_link":   row.ExternalLink,
			"email":           row.Email,
			"raw_data":        row.RawData,
			"content_hash":    row.ContentHash,
			"date_updated":    now,
			"last_seen_at":    now,
		}).Error
	if err != nil {
		return "", fmt.Errorf("failed to update job %s: %w", listing.ID, err)
	}
	return resultUpdated, nil
}

func newStoredJob(listing models.JobListing, now time.Time) (entities.StoredJob, error) {
	payload, err := json.Marshal(listing)
	if err != nil {
		return entities.StoredJob{}, fmt.Errorf("failed to encode job %s: %w", listing.ID, err)
	}

	description := ""
	if primary, ok := listing.PrimaryDescription(); ok {
		description = primary.Description
	}

	return entities.StoredJob{
		ID:             listing.ID,
		SourcePlatform: listing.Source,
		Title:          listing.Title,
		Description:    description,
		CompanyName:    listing.CompanyName(),
		City:           listing.Location.City,
		CantonCode:     listing.Location.CantonCode,
		ExternalLink:   externalLink(listing),
		Email:          applicationEmail(listing),
		RawData:        payload,
		ContentHash:    listing.ContentHash(),
		DateAdded:      now,
		LastSeenAt:     now,
	}, nil
}

func externalLink(listing models.JobListing) *string {
	if listing.ExternalURL != nil && strings.TrimSpace(*listing.ExternalURL) != "" {
		return listing.ExternalURL
	}
	if listing.Application != nil {
		return listing.Application.FormURL
	}
	return nil
}

func applicationEmail(listing models.JobListing) *string {
	if listing.Application != nil && listing.Application.Email != nil {
		return listing.Application.Email
	}
	if listing.Contact != nil {
		return listing.Contact.Email
	}
	return nil
}

func (repo *Jobs) GetByID(ctx context.Context, id string) (*entities.StoredJob, error) {
	var job entities.StoredJob
	err := repo.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetUnprocessed returns jobs never enriched or changed since their last enrichment.
func (repo *Jobs) GetUnprocessed(ctx context.Context, limit int, offset int) ([]entities.StoredJob, error) {
	var jobs []entities.StoredJob
	if err := repo.db.WithContext(ctx).
		Where("ai_processed_at IS NULL OR (date_updated IS NOT NULL AND date_updated > ai_processed_at)").
		Order("date_added, id").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) SaveEnrichment(ctx context.Context, enrichment models.Enrichment) error {
	var job entities.StoredJob
	job.ID = enrichment.OriginalID
	job.ApplyEnrichment(enrichment, repo.now().UTC())

	res := repo.db.WithContext(ctx).Model(&entities.StoredJob{ID: job.ID}).
		Select(enrichmentColumns).
		Updates(&job)
	if res.Error != nil {
		return fmt.Errorf("failed to save enrichment for job %s: %w", job.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s not found: %w", job.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (repo *Jobs) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&entities.StoredJob{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RemoveOldJobs drops jobs no scrape has returned since expirationTime.
func (repo *Jobs) RemoveOldJobs(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).
		Delete(&entities.StoredJob{}, "last_seen_at < ?", expirationTime.UTC())
	return res.RowsAffected, res.Error
}
