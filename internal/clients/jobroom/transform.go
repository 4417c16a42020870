package jobroom

import (
	"bytes"
	"encoding/json"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Transformer turns raw job-room advertisements into models.JobListing.
// It keeps no state between calls.
type Transformer struct {
	source     string
	includeRaw bool
}

func NewTransformer(source string, includeRaw bool) *Transformer {
	return &Transformer{source: source, includeRaw: includeRaw}
}

// Transform accepts both {"jobAdvertisement": {...}} and the bare
// advertisement. Only a record that is not a JSON object is an error.
func (t *Transformer) Transform(raw []byte) (models.JobListing, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope == nil {
		return models.JobListing{}, &errs.ResponseParseError{Provider: t.source, Message: "job record is not a JSON object"}
	}

	body := raw
	if inner, ok := envelope["jobAdvertisement"]; ok && isObject(inner) {
		body = inner
	}

	var record jobRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return models.JobListing{}, &errs.ResponseParseError{Provider: t.source, Message: err.Error()}
	}

	listing := t.toListing(record)
	if t.includeRaw {
		listing.RawData = append(json.RawMessage(nil), bytes.TrimSpace(raw)...)
	}
	return listing, nil
}

// TransformAll transforms a batch in order. Records that are not objects
// are logged and skipped.
func (t *Transformer) TransformAll(records []json.RawMessage) []models.JobListing {
	listings := make([]models.JobListing, 0, len(records))
	for i, raw := range records {
		listing, err := t.Transform(raw)
		if err != nil {
			log.Warnf("skipping job record %d: %v", i, err)
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

func (t *Transformer) toListing(r jobRecord) models.JobListing {
	content := r.JobContent.Value

	descriptions := descriptionsOf(content)
	title := ""
	if len(descriptions) > 0 {
		title = descriptions[0].Title
	}

	return models.JobListing{
		ID:                         r.ID.or(""),
		Source:                     t.source,
		ExternalReference:          r.ExternalReference.ptr(),
		StellennummerEgov:          r.StellennummerEgov.ptr(),
		StellennummerAvam:          r.StellennummerAvam.ptr(),
		Title:                      title,
		Descriptions:               descriptions,
		ExternalURL:                content.ExternalURL.ptr(),
		Company:                    companyOf(content.Company.Value),
		Location:                   locationOf(content.Location.Value),
		NumberOfPositions:          content.NumberOfJobs.or(1),
		Employment:                 employmentOf(content.Employment.Value),
		Occupations:                occupationsOf(content),
		LanguageSkills:             languageSkillsOf(content),
		Contact:                    contactOf(content.PublicContact),
		Application:                applicationOf(content.ApplyChannel),
		Publication:                publicationOf(r.Publication),
		CreatedAt:                  r.CreatedTime.ptr(),
		UpdatedAt:                  r.UpdatedTime.ptr(),
		Status:                     r.Status.ptr(),
		ReportingObligation:        r.ReportingObligation.or(false),
		ReportingObligationEndDate: r.ReportingObligationEndDate.ptr(),
	}
}

func descriptionsOf(content jobContent) []models.JobDescription {
	descriptions := make([]models.JobDescription, 0, len(content.JobDescriptions.Value))
	for _, d := range content.JobDescriptions.Value {
		if !d.Valid {
			continue
		}
		descriptions = append(descriptions, models.JobDescription{
			LanguageCode: d.Value.LanguageIsoCode.or("en"),
			Title:        d.Value.Title.or(""),
			Description:  d.Value.Description.or(""),
		})
	}
	return descriptions
}

func companyOf(c companyData) models.CompanyInfo {
	return models.CompanyInfo{
		Name:        c.Name.ptr(),
		Street:      c.Street.ptr(),
		HouseNumber: c.HouseNumber.ptr(),
		PostalCode:  c.PostalCode.ptr(),
		City:        c.City.ptr(),
		CountryCode: c.CountryIsoCode.ptr(),
		Phone:       c.Phone.ptr(),
		Email:       c.Email.ptr(),
		Website:     c.Website.ptr(),
		IsAgency:    c.Surrogate.or(false),
	}
}

func locationOf(l locationData) models.JobLocation {
	location := models.JobLocation{
		City:         l.City.or(""),
		PostalCode:   l.PostalCode.ptr(),
		CantonCode:   l.CantonCode.ptr(),
		RegionCode:   l.RegionCode.ptr(),
		CommunalCode: l.CommunalCode.ptr(),
		CountryCode:  l.CountryIsoCode.or("CH"),
		Remarks:      l.Remarks.ptr(),
	}
	if c := l.Coordinates.Value; c.Lat.value != nil && c.Lon.value != nil {
		location.Coordinates = &models.Coordinates{Lat: *c.Lat.value, Lon: *c.Lon.value}
	}
	return location
}

func employmentOf(e employmentData) models.EmploymentDetails {
	workForms := make([]string, 0, len(e.WorkForms.Value))
	for _, form := range e.WorkForms.Value {
		if form.value != nil {
			workForms = append(workForms, *form.value)
		}
	}

	return models.EmploymentDetails{
		StartDate:         e.StartDate.ptr(),
		EndDate:           e.EndDate.ptr(),
		IsPermanent:       e.Permanent.or(true),
		IsImmediate:       e.Immediately.or(false),
		IsShortEmployment: e.ShortEmployment.or(false),
		WorkloadMin:       e.WorkloadPercentageMin.or(100),
		WorkloadMax:       e.WorkloadPercentageMax.or(100),
		WorkForms:         workForms,
	}
}

func occupationsOf(content jobContent) []models.Occupation {
	valid := lo.Filter(content.Occupations.Value, func(o optional[occupationData], _ int) bool { return o.Valid })
	return lo.Map(valid, func(o optional[occupationData], _ int) models.Occupation {
		return models.Occupation{
			AvamCode:          o.Value.AvamOccupationCode.or(""),
			WorkExperience:    o.Value.WorkExperience.ptr(),
			EducationCode:     o.Value.EducationCode.ptr(),
			QualificationCode: o.Value.QualificationCode.ptr(),
		}
	})
}

func languageSkillsOf(content jobContent) []models.LanguageSkill {
	valid := lo.Filter(content.LanguageSkills.Value, func(s optional[languageSkillData], _ int) bool { return s.Valid })
	return lo.Map(valid, func(s optional[languageSkillData], _ int) models.LanguageSkill {
		return models.LanguageSkill{
			LanguageCode: s.Value.LanguageIsoCode.or(""),
			SpokenLevel:  s.Value.SpokenLevel.ptr(),
			WrittenLevel: s.Value.WrittenLevel.ptr(),
		}
	})
}

func contactOf(c optional[contactData]) *models.ContactInfo {
	if !c.Valid {
		return nil
	}
	return &models.ContactInfo{
		Salutation: c.Value.Salutation.ptr(),
		FirstName:  c.Value.FirstName.ptr(),
		LastName:   c.Value.LastName.ptr(),
		Phone:      c.Value.Phone.ptr(),
		Email:      c.Value.Email.ptr(),
	}
}

func applicationOf(a optional[applyChannelData]) *models.ApplicationChannel {
	if !a.Valid {
		return nil
	}
	postAddress := a.Value.PostAddress.ptr()
	if postAddress == nil || *postAddress == "" {
		postAddress = a.Value.RawPostAddress.ptr()
	}
	return &models.ApplicationChannel{
		Email:          a.Value.EmailAddress.ptr(),
		Phone:          a.Value.PhoneNumber.ptr(),
		FormURL:        a.Value.FormURL.ptr(),
		PostAddress:    postAddress,
		AdditionalInfo: a.Value.AdditionalInfo.ptr(),
	}
}

func publicationOf(p optional[publicationData]) *models.PublicationInfo {
	if !p.Valid {
		return nil
	}
	return &models.PublicationInfo{
		StartDate:         p.Value.StartDate.or(""),
		EndDate:           p.Value.EndDate.or(""),
		PublicDisplay:     p.Value.PublicDisplay.or(true),
		EuresDisplay:      p.Value.EuresDisplay.or(false),
		CompanyAnonymous:  p.Value.CompanyAnonymous.or(false),
		RestrictedDisplay: p.Value.RestrictedDisplay.or(false),
	}
}

func isObject(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
