package jobroom

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// The types below decode upstream records without ever failing: a missing,
// null, empty or malformed value leaves the field invalid and the
// transformer substitutes its default.

type optional[T any] struct {
	Value T
	Valid bool
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	if isBlank(data) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	o.Value, o.Valid = v, true
	return nil
}

// isBlank reports null, {} and [].
func isBlank(data []byte) bool {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return true
	}
	if len(data) < 2 {
		return len(data) == 0
	}
	first, last := data[0], data[len(data)-1]
	if (first == '{' && last == '}') || (first == '[' && last == ']') {
		return len(bytes.TrimSpace(data[1:len(data)-1])) == 0
	}
	return false
}

func decodeScalar(data []byte) (any, bool) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

type flexString struct {
	value *string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	v, ok := decodeScalar(data)
	if !ok {
		return nil
	}
	switch v.(type) {
	case string, float64, bool:
		s := cast.ToString(v)
		f.value = &s
	}
	return nil
}

func (f flexString) ptr() *string {
	if f.value == nil {
		return nil
	}
	s := *f.value
	return &s
}

func (f flexString) or(def string) string {
	if f.value == nil {
		return def
	}
	return *f.value
}

type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	v, ok := decodeScalar(data)
	if !ok {
		return nil
	}
	var (
		n   int
		err error
	)
	switch t := v.(type) {
	case string:
		n, err = strconv.Atoi(strings.TrimSpace(t))
	case float64, bool:
		n, err = cast.ToIntE(t)
	default:
		return nil
	}
	if err == nil {
		f.value = &n
	}
	return nil
}

func (f flexInt) or(def int) int {
	if f.value == nil {
		return def
	}
	return *f.value
}

type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, ok := decodeScalar(data)
	if !ok {
		return nil
	}
	switch v.(type) {
	case string, float64:
		if n, err := cast.ToFloat64E(v); err == nil {
			f.value = &n
		}
	}
	return nil
}

type flexBool struct {
	value *bool
}

func (f *flexBool) UnmarshalJSON(data []byte) error {
	v, ok := decodeScalar(data)
	if !ok {
		return nil
	}
	if b, err := cast.ToBoolE(v); err == nil {
		f.value = &b
	}
	return nil
}

func (f flexBool) or(def bool) bool {
	if f.value == nil {
		return def
	}
	return *f.value
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// flexTime accepts ISO-8601 timestamps; a trailing Z means UTC and values
// without a zone are taken as UTC.
type flexTime struct {
	value *time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	v, ok := decodeScalar(data)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			t = t.UTC()
			f.value = &t
			return nil
		}
	}
	return nil
}

func (f flexTime) ptr() *time.Time {
	if f.value == nil {
		return nil
	}
	t := *f.value
	return &t
}

type jobRecord struct {
	ID                         flexString                `json:"id"`
	ExternalReference          flexString                `json:"externalReference"`
	StellennummerEgov          flexString                `json:"stellennummerEgov"`
	StellennummerAvam          flexString                `json:"stellennummerAvam"`
	Status                     flexString                `json:"status"`
	ReportingObligation        flexBool                  `json:"reportingObligation"`
	ReportingObligationEndDate flexString                `json:"reportingObligationEndDate"`
	CreatedTime                flexTime                  `json:"createdTime"`
	UpdatedTime                flexTime                  `json:"updatedTime"`
	JobContent                 optional[jobContent]      `json:"jobContent"`
	Publication                optional[publicationData] `json:"publication"`
}

type jobContent struct {
	ExternalURL     flexString                              `json:"externalUrl"`
	NumberOfJobs    flexInt                                 `json:"numberOfJobs"`
	JobDescriptions optional[[]optional[descriptionData]]   `json:"jobDescriptions"`
	Company         optional[companyData]                   `json:"company"`
	Location        optional[locationData]                  `json:"location"`
	Employment      optional[employmentData]                `json:"employment"`
	Occupations     optional[[]optional[occupationData]]    `json:"occupations"`
	LanguageSkills  optional[[]optional[languageSkillData]] `json:"languageSkills"`
	PublicContact   optional[contactData]                   `json:"publicContact"`
	ApplyChannel    optional[applyChannelData]              `json:"applyChannel"`
}

type descriptionData struct {
	LanguageIsoCode flexString `json:"languageIsoCode"`
	Title           flexString `json:"title"`
	Description     flexString `json:"description"`
}

type companyData struct {
	Name           flexString `json:"name"`
	Street         flexString `json:"street"`
	HouseNumber    flexString `json:"houseNumber"`
	PostalCode     flexString `json:"postalCode"`
	City           flexString `json:"city"`
	CountryIsoCode flexString `json:"countryIsoCode"`
	Phone          flexString `json:"phone"`
	Email          flexString `json:"email"`
	Website        flexString `json:"website"`
	Surrogate      flexBool   `json:"surrogate"`
}

type coordinatesData struct {
	Lat flexFloat `json:"lat"`
	Lon flexFloat `json:"lon"`
}

type locationData struct {
	City           flexString                `json:"city"`
	PostalCode     flexString                `json:"postalCode"`
	CantonCode     flexString                `json:"cantonCode"`
	RegionCode     flexString                `json:"regionCode"`
	CommunalCode   flexString                `json:"communalCode"`
	CountryIsoCode flexString                `json:"countryIsoCode"`
	Coordinates    optional[coordinatesData] `json:"coordinates"`
	Remarks        flexString                `json:"remarks"`
}

type employmentData struct {
	StartDate             flexString             `json:"startDate"`
	EndDate               flexString             `json:"endDate"`
	Permanent             flexBool               `json:"permanent"`
	Immediately           flexBool               `json:"immediately"`
	ShortEmployment       flexBool               `json:"shortEmployment"`
	WorkloadPercentageMin flexInt                `json:"workloadPercentageMin"`
	WorkloadPercentageMax flexInt                `json:"workloadPercentageMax"`
	WorkForms             optional[[]flexString] `json:"workForms"`
}

type occupationData struct {
	AvamOccupationCode flexString `json:"avamOccupationCode"`
	WorkExperience     flexString `json:"workExperience"`
	EducationCode      flexString `json:"educationCode"`
	QualificationCode  flexString `json:"qualificationCode"`
}

type languageSkillData struct {
	LanguageIsoCode flexString `json:"languageIsoCode"`
	SpokenLevel     flexString `json:"spokenLevel"`
	WrittenLevel    flexString `json:"writtenLevel"`
}

type contactData struct {
	Salutation flexString `json:"salutation"`
	FirstName  flexString `json:"firstName"`
	LastName   flexString `json:"lastName"`
	Phone      flexString `json:"phone"`
	Email      flexString `json:"email"`
}

type applyChannelData struct {
	EmailAddress   flexString `json:"emailAddress"`
	PhoneNumber    flexString `json:"phoneNumber"`
	FormURL        flexString `json:"formUrl"`
	PostAddress    flexString `json:"postAddress"`
	RawPostAddress flexString `json:"rawPostAddress"`
	AdditionalInfo flexString `json:"additionalInfo"`
}

type publicationData struct {
	StartDate         flexString `json:"startDate"`
	EndDate           flexString `json:"endDate"`
	PublicDisplay     flexBool   `json:"publicDisplay"`
	EuresDisplay      flexBool   `json:"euresDisplay"`
	CompanyAnonymous  flexBool   `json:"companyAnonymous"`
	RestrictedDisplay flexBool   `json:"restrictedDisplay"`
}
