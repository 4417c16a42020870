package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/samber/lo"
)

// StoredJob is one listing row. The enrichment columns stay empty until the
// AI pass has run for the current content hash.
type StoredJob struct {
	ID             string `gorm:"primaryKey;size:255"`
	SourcePlatform string `gorm:"size:100;not null;index"`
	Title          string `gorm:"size:500;not null"`
	Description    string
	CompanyName    string `gorm:"size:255"`
	City           string `gorm:"size:255"`
	CantonCode     *string
	ExternalLink   *string
	Email          *string
	RawData        []byte
	ContentHash    string    `gorm:"size:64;not null"`
	DateAdded      time.Time `gorm:"not null;index"`
	DateUpdated    *time.Time
	LastSeenAt     time.Time `gorm:"not null;index"`

	TitleDE            *string
	TitleFR            *string
	TitleIT            *string
	TitleEN            *string
	DescriptionDE      *string
	DescriptionFR      *string
	DescriptionIT      *string
	DescriptionEN      *string
	RequiredLanguages  string
	ExperienceLevel    *string
	YearsExperienceMin *int
	YearsExperienceMax *int
	Education          *string
	SemanticKeywords   string
	AIProcessedAt      *time.Time `gorm:"index"`
}

func (StoredJob) TableName() string {
	return "jobs"
}

func (j *StoredJob) ApplyEnrichment(e models.Enrichment, processedAt time.Time) {
	j.TitleDE, j.TitleFR, j.TitleIT, j.TitleEN = e.TitleDE, e.TitleFR, e.TitleIT, e.TitleEN
	j.DescriptionDE, j.DescriptionFR = e.DescriptionDE, e.DescriptionFR
	j.DescriptionIT, j.DescriptionEN = e.DescriptionIT, e.DescriptionEN
	j.RequiredLanguages = strings.Join(e.RequiredLanguages, ",")
	j.ExperienceLevel = lo.ToPtr(string(e.ExperienceLevel))
	j.YearsExperienceMin = e.YearsExperienceMin
	j.YearsExperienceMax = e.YearsExperienceMax
	j.Education = e.Education
	j.SemanticKeywords = strings.Join(e.SemanticKeywords, ",")
	j.AIProcessedAt = &processedAt
}

func (j *StoredJob) RequiredLanguagesAsArray() []string {
	return splitList(j.RequiredLanguages)
}

func (j *StoredJob) SemanticKeywordsAsArray() []string {
	return splitList(j.SemanticKeywords)
}

func (j *StoredJob) Enrichment() (models.Enrichment, bool) {
	if j.AIProcessedAt == nil {
		return models.Enrichment{}, false
	}

	level := models.ExperienceMid
	if j.ExperienceLevel != nil {
		level, _ = models.ToExperienceLevel(*j.ExperienceLevel)
	}
	return models.Enrichment{
		OriginalID:         j.ID,
		TitleDE:            j.TitleDE,
		TitleFR:            j.TitleFR,
		TitleIT:            j.TitleIT,
		TitleEN:            j.TitleEN,
		DescriptionDE:      j.DescriptionDE,
		DescriptionFR:      j.DescriptionFR,
		DescriptionIT:      j.DescriptionIT,
		DescriptionEN:      j.DescriptionEN,
		RequiredLanguages:  j.RequiredLanguagesAsArray(),
		ExperienceLevel:    level,
		YearsExperienceMin: j.YearsExperienceMin,
		YearsExperienceMax: j.YearsExperienceMax,
		Education:          j.Education,
		SemanticKeywords:   j.SemanticKeywordsAsArray(),
	}, true
}

// Listing decodes the normalized listing kept in RawData.
func (j *StoredJob) Listing() (models.JobListing, error) {
	var listing models.JobListing
	if len(j.RawData) == 0 {
		return listing, fmt.Errorf("job %s has no stored payload", j.ID)
	}
	if err := json.Unmarshal(j.RawData, &listing); err != nil {
		return listing, fmt.Errorf("failed to decode stored job %s: %w", j.ID, err)
	}
	return listing, nil
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return lo.Compact(strings.Split(s, ","))
}
