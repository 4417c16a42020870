package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

type JobDescription struct {
	LanguageCode string `json:"language_code"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type CompanyInfo struct {
	Name        *string `json:"name"`
	Street      *string `json:"street"`
	HouseNumber *string `json:"house_number"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	CountryCode *string `json:"country_code"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`
	IsAgency    bool    `json:"is_agency"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type JobLocation struct {
	City         string       `json:"city"`
	PostalCode   *string      `json:"postal_code"`
	CantonCode   *string      `json:"canton_code"`
	RegionCode   *string      `json:"region_code"`
	CommunalCode *string      `json:"communal_code"`
	CountryCode  string       `json:"country_code"`
	Coordinates  *Coordinates `json:"coordinates"`
	Remarks      *string      `json:"remarks"`
}

type EmploymentDetails struct {
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	IsPermanent       bool     `json:"is_permanent"`
	IsImmediate       bool     `json:"is_immediate"`
	IsShortEmployment bool     `json:"is_short_employment"`
	WorkloadMin       int      `json:"workload_min"`
	WorkloadMax       int      `json:"workload_max"`
	WorkForms         []string `json:"work_forms"`
}

type Occupation struct {
	AvamCode          string  `json:"avam_code"`
	WorkExperience    *string `json:"work_experience"`
	EducationCode     *string `json:"education_code"`
	QualificationCode *string `json:"qualification_code"`
}

type LanguageSkill struct {
	LanguageCode string  `json:"language_code"`
	SpokenLevel  *string `json:"spoken_level"`
	WrittenLevel *string `json:"written_level"`
}

type ContactInfo struct {
	Salutation *string `json:"salutation"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
}

type ApplicationChannel struct {
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	FormURL        *string `json:"form_url"`
	PostAddress    *string `json:"post_address"`
	AdditionalInfo *string `json:"additional_info"`
}

type PublicationInfo struct {
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	PublicDisplay     bool   `json:"public_display"`
	EuresDisplay      bool   `json:"eures_display"`
	CompanyAnonymous  bool   `json:"company_anonymous"`
	RestrictedDisplay bool   `json:"restricted_display"`
}

// JobListing is the normalized form of one upstream job advertisement.
type JobListing struct {
	ID                         string              `json:"id"`
	Source                     string              `json:"source"`
	ExternalReference          *string             `json:"external_reference"`
	StellennummerEgov          *string             `json:"stellennummer_egov"`
	StellennummerAvam          *string             `json:"stellennummer_avam"`
	Title                      string              `json:"title"`
	Descriptions               []JobDescription    `json:"descriptions"`
	ExternalURL                *string             `json:"external_url"`
	Company                    CompanyInfo         `json:"company"`
	Location                   JobLocation         `json:"location"`
	NumberOfPositions          int                 `json:"number_of_positions"`
	Employment                 EmploymentDetails   `json:"employment"`
	Occupations                []Occupation        `json:"occupations"`
	LanguageSkills             []LanguageSkill     `json:"language_skills"`
	Contact                    *ContactInfo        `json:"contact"`
	Application                *ApplicationChannel `json:"application"`
	Publication                *PublicationInfo    `json:"publication"`
	CreatedAt                  *time.Time          `json:"created_at"`
	UpdatedAt                  *time.Time          `json:"updated_at"`
	Status                     *string             `json:"status"`
	ReportingObligation        bool                `json:"reporting_obligation"`
	ReportingObligationEndDate *string             `json:"reporting_obligation_end_date"`
	RawData                    json.RawMessage     `json:"raw_data,omitempty"`
}

func (j JobListing) CompanyName() string {
	if j.Company.Name == nil {
		return ""
	}
	return *j.Company.Name
}

// PrimaryDescription returns the first description, which is also where the title comes from.
func (j JobListing) PrimaryDescription() (JobDescription, bool) {
	if len(j.Descriptions) == 0 {
		return JobDescription{}, false
	}
	return j.Descriptions[0], true
}

type SearchResult struct {
	Items        []JobListing   `json:"items"`
	TotalCount   int            `json:"total_count"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalPages   int            `json:"total_pages"`
	Source       string         `json:"source"`
	SearchTimeMs int64          `json:"search_time_ms"`
	Request      SearchCriteria `json:"-"`
}

func (r SearchResult) HasMore() bool {
	return r.Page+1 < r.TotalPages
}

// ContentHash fingerprints the parts of a listing that matter for change
// detection: title, descriptions and company name. Every field is length
// prefixed, so no split of the same text into fields collides.
func (j JobListing) ContentHash() string {
	h := sha256.New()
	writeField := func(value string) {
		fmt.Fprintf(h, "%d:%s", len(value), value)
	}

	writeField(j.Title)
	fmt.Fprintf(h, "%d:", len(j.Descriptions))
	for _, d := range j.Descriptions {
		writeField(d.LanguageCode)
		writeField(d.Title)
		writeField(d.Description)
	}
	writeField(j.CompanyName())

	return hex.EncodeToString(h.Sum(nil))
}
