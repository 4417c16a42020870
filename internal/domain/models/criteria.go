package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ContractType string

const (
	ContractPermanent ContractType = "permanent"
	ContractTemporary ContractType = "temporary"
	ContractAny       ContractType = "any"
)

type WorkForm string

const (
	HomeWork    WorkForm = "HOME_WORK"
	ShiftWork   WorkForm = "SHIFT_WORK"
	NightWork   WorkForm = "NIGHT_WORK"
	SundayWork  WorkForm = "SUN_AND_HOLIDAYS"
	WeekendWork WorkForm = "WEEKEND_WORK"
	OnCallWork  WorkForm = "ON_CALL"
)

type SortOrder string

const (
	SortDateDesc  SortOrder = "date_desc"
	SortDateAsc   SortOrder = "date_asc"
	SortRelevance SortOrder = "relevance"
)

type LanguageLevel string

const (
	LevelNone         LanguageLevel = "NONE"
	LevelBasic        LanguageLevel = "BASIC"
	LevelIntermediate LanguageLevel = "INTERMEDIATE"
	LevelProficient   LanguageLevel = "PROFICIENT"
)

type GeoPoint struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

type RadiusSearch struct {
	GeoPoint GeoPoint
	Distance int `validate:"gte=1,lte=500"`
}

type LanguageSkillFilter struct {
	LanguageCode string        `validate:"required,len=2"`
	SpokenLevel  LanguageLevel `validate:"omitempty,oneof=NONE BASIC INTERMEDIATE PROFICIENT"`
	WrittenLevel LanguageLevel `validate:"omitempty,oneof=NONE BASIC INTERMEDIATE PROFICIENT"`
}

// SearchCriteria is built once per request through NewSearchCriteria and
// handed around by value.
type SearchCriteria struct {
	Query             string
	Keywords          []string
	Location          string
	CommunalCodes     []string
	CantonCodes       []string
	RegionCodes       []string
	RadiusSearch      *RadiusSearch
	WorkloadMin       int          `validate:"gte=0,lte=100,ltefield=WorkloadMax"`
	WorkloadMax       int          `validate:"gte=0,lte=100"`
	ContractType      ContractType `validate:"oneof=permanent temporary any"`
	WorkForms         []WorkForm
	ProfessionCodes   []string
	CompanyName       *string
	PostedWithinDays  int `validate:"gte=1,lte=365"`
	DisplayRestricted bool
	LanguageSkills    []LanguageSkillFilter `validate:"dive"`
	Page              int                   `validate:"gte=0"`
	PageSize          int                   `validate:"gte=1,lte=100"`
	Sort              SortOrder             `validate:"oneof=date_desc date_asc relevance"`
	Language          string                `validate:"oneof=en de fr it"`
}

type CriteriaOption func(*SearchCriteria)

var criteriaValidator = validator.New()

// NewSearchCriteria starts from the job-room platform defaults.
func NewSearchCriteria(opts ...CriteriaOption) (SearchCriteria, error) {
	criteria := SearchCriteria{
		WorkloadMin:      10,
		WorkloadMax:      100,
		ContractType:     ContractAny,
		PostedWithinDays: 60,
		Page:             0,
		PageSize:         20,
		Sort:             SortDateDesc,
		Language:         "en",
	}

	for _, opt := range opts {
		opt(&criteria)
	}

	if err := criteria.Validate(); err != nil {
		return SearchCriteria{}, err
	}
	return criteria, nil
}

func (c SearchCriteria) Validate() error {
	if err := criteriaValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid search criteria: %w", err)
	}
	return nil
}

func WithQuery(query string) CriteriaOption {
	return func(c *SearchCriteria) { c.Query = query }
}

func WithKeywords(keywords ...string) CriteriaOption {
	return func(c *SearchCriteria) { c.Keywords = append([]string(nil), keywords...) }
}

func WithLocation(location string) CriteriaOption {
	return func(c *SearchCriteria) { c.Location = location }
}

func WithCommunalCodes(codes ...string) CriteriaOption {
	return func(c *SearchCriteria) { c.CommunalCodes = append([]string(nil), codes...) }
}

func WithCantonCodes(codes ...string) CriteriaOption {
	return func(c *SearchCriteria) { c.CantonCodes = append([]string(nil), codes...) }
}

func WithRegionCodes(codes ...string) CriteriaOption {
	return func(c *SearchCriteria) { c.RegionCodes = append([]string(nil), codes...) }
}

func WithRadiusSearch(lat, lon float64, distance int) CriteriaOption {
	return func(c *SearchCriteria) {
		c.RadiusSearch = &RadiusSearch{GeoPoint: GeoPoint{Lat: lat, Lon: lon}, Distance: distance}
	}
}

func WithWorkload(min, max int) CriteriaOption {
	return func(c *SearchCriteria) {
		c.WorkloadMin = min
		c.WorkloadMax = max
	}
}

func WithContractType(contractType ContractType) CriteriaOption {
	return func(c *SearchCriteria) { c.ContractType = contractType }
}

func WithWorkForms(forms ...WorkForm) CriteriaOption {
	return func(c *SearchCriteria) { c.WorkForms = append([]WorkForm(nil), forms...) }
}

func WithProfessionCodes(codes ...string) CriteriaOption {
	return func(c *SearchCriteria) { c.ProfessionCodes = append([]string(nil), codes...) }
}

func WithCompanyName(name string) CriteriaOption {
	return func(c *SearchCriteria) { c.CompanyName = &name }
}

func WithPostedWithinDays(days int) CriteriaOption {
	return func(c *SearchCriteria) { c.PostedWithinDays = days }
}

func WithDisplayRestricted(display bool) CriteriaOption {
	return func(c *SearchCriteria) { c.DisplayRestricted = display }
}

func WithLanguageSkills(skills ...LanguageSkillFilter) CriteriaOption {
	return func(c *SearchCriteria) { c.LanguageSkills = append([]LanguageSkillFilter(nil), skills...) }
}

func WithPage(page, pageSize int) CriteriaOption {
	return func(c *SearchCriteria) {
		c.Page = page
		c.PageSize = pageSize
	}
}

func WithSort(sort SortOrder) CriteriaOption {
	return func(c *SearchCriteria) { c.Sort = sort }
}

func WithLanguage(language string) CriteriaOption {
	return func(c *SearchCriteria) { c.Language = language }
}
