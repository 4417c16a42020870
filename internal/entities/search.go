package entities

import (
	"strings"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
)

// SavedSearch is a named set of criteria the scraper runs on every tick.
type SavedSearch struct {
	ID               int
	Name             string `gorm:"size:100;uniqueIndex"`
	Query            string
	Location         string
	CantonCodes      string
	ContractType     models.ContractType
	WorkloadMin      int
	WorkloadMax      int
	PostedWithinDays int
	Language         string
	MaxPages         int
	LastRunAt        *time.Time
	CreatedAt        time.Time
}

func NewSavedSearch(
	name string,
	query string,
	location string,
	cantonCodes []string,
	contractType models.ContractType,
	postedWithinDays int,
	maxPages int,
) *SavedSearch {
	return &SavedSearch{
		Name:             name,
		Query:            query,
		Location:         location,
		CantonCodes:      strings.Join(cantonCodes, ","),
		ContractType:     contractType,
		WorkloadMin:      10,
		WorkloadMax:      100,
		PostedWithinDays: postedWithinDays,
		Language:         "en",
		MaxPages:         maxPages,
	}
}

func (s *SavedSearch) CantonCodesAsArray() []string {
	return splitList(s.CantonCodes)
}

// Criteria builds validated criteria for one page of this search.
func (s *SavedSearch) Criteria(page, pageSize int) (models.SearchCriteria, error) {
	opts := []models.CriteriaOption{
		models.WithQuery(s.Query),
		models.WithLocation(s.Location),
		models.WithPage(page, pageSize),
	}
	if cantons := s.CantonCodesAsArray(); len(cantons) > 0 {
		opts = append(opts, models.WithCantonCodes(cantons...))
	}
	if s.ContractType != "" {
		opts = append(opts, models.WithContractType(s.ContractType))
	}
	if s.WorkloadMax > 0 {
		opts = append(opts, models.WithWorkload(s.WorkloadMin, s.WorkloadMax))
	}
	if s.PostedWithinDays > 0 {
		opts = append(opts, models.WithPostedWithinDays(s.PostedWithinDays))
	}
	if s.Language != "" {
		opts = append(opts, models.WithLanguage(s.Language))
	}
	return models.NewSearchCriteria(opts...)
}
