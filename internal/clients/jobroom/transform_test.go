package jobroom

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) []byte {
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func Test_Transformer_Transform_FullRecord(t *testing.T) {
	assert := assert.New(t)

	listing, err := NewTransformer(Name, false).Transform(readTestdata(t, "job_details.json"))
	require.NoError(t, err)

	assert.Equal("7c4f8d2e-1b3a-4e5f-9a8b-0c1d2e3f4a5b", listing.ID)
	assert.Equal(Name, listing.Source)
	assert.Equal("Senior Go Entwickler (80-100%)", listing.Title)
	assert.Len(listing.Descriptions, 2)
	assert.Equal("en", listing.Descriptions[1].LanguageCode)
	assert.Equal("REF-2024-118", *listing.ExternalReference)
	assert.Equal("12345678", *listing.StellennummerEgov)
	assert.Equal("https://careers.example.ch/jobs/118", *listing.ExternalURL)
	assert.Equal(2, listing.NumberOfPositions)

	assert.Equal("Helvetia Software AG", listing.CompanyName())
	assert.Equal("10", *listing.Company.HouseNumber)
	assert.Nil(listing.Company.Phone)
	assert.False(listing.Company.IsAgency)

	assert.Equal("Zürich", listing.Location.City)
	assert.Equal("261", *listing.Location.CommunalCode)
	assert.Equal("ZH", *listing.Location.CantonCode)
	assert.Nil(listing.Location.Remarks)
	require.NotNil(t, listing.Location.Coordinates)
	assert.InDelta(47.3769, listing.Location.Coordinates.Lat, 1e-9)
	assert.InDelta(8.5417, listing.Location.Coordinates.Lon, 1e-9)

	assert.Equal(80, listing.Employment.WorkloadMin)
	assert.Equal(100, listing.Employment.WorkloadMax)
	assert.True(listing.Employment.IsPermanent)
	assert.Equal("2024-03-01", *listing.Employment.StartDate)
	assert.Nil(listing.Employment.EndDate)
	assert.Equal([]string{"HOME_WORK"}, listing.Employment.WorkForms)

	require.Len(t, listing.Occupations, 1)
	assert.Equal("26110", listing.Occupations[0].AvamCode)
	assert.Nil(listing.Occupations[0].QualificationCode)

	require.Len(t, listing.LanguageSkills, 2)
	assert.Equal("PROFICIENT", *listing.LanguageSkills[0].SpokenLevel)
	assert.Nil(listing.LanguageSkills[1].WrittenLevel)

	require.NotNil(t, listing.Contact)
	assert.Equal("Muster", *listing.Contact.LastName)

	require.NotNil(t, listing.Application)
	assert.Equal("apply@example.ch", *listing.Application.Email)
	assert.Equal("Helvetia Software AG, Bahnhofstrasse 10, 8001 Zürich", *listing.Application.PostAddress)

	require.NotNil(t, listing.Publication)
	assert.Equal("2024-03-15", listing.Publication.EndDate)
	assert.True(listing.Publication.PublicDisplay)

	require.NotNil(t, listing.CreatedAt)
	assert.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), *listing.CreatedAt)
	require.NotNil(t, listing.UpdatedAt)
	assert.Equal(time.UTC, listing.UpdatedAt.Location())

	assert.Equal("PUBLISHED", *listing.Status)
	assert.True(listing.ReportingObligation)
	assert.Equal("2024-02-15", *listing.ReportingObligationEndDate)
	assert.Nil(listing.RawData)
}

func Test_Transformer_Transform_WrappedAndUnwrappedAreEqual(t *testing.T) {
	transformer := NewTransformer(Name, false)
	raw := readTestdata(t, "job_details.json")

	unwrapped, err := transformer.Transform(raw)
	require.NoError(t, err)

	wrapped, err := transformer.Transform([]byte(`{"jobAdvertisement": ` + string(raw) + `}`))
	require.NoError(t, err)

	assert.Equal(t, unwrapped, wrapped)
}

func Test_Transformer_Transform_IsDeterministic(t *testing.T) {
	transformer := NewTransformer(Name, true)
	raw := readTestdata(t, "job_details.json")

	first, err := transformer.Transform(raw)
	require.NoError(t, err)
	second, err := transformer.Transform(raw)
	require.NoError(t, err)

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	assert.Equal(t, firstJSON, secondJSON)
}

func Test_Transformer_Transform_MissingSections(t *testing.T) {
	assert := assert.New(t)

	listing, err := NewTransformer(Name, false).Transform([]byte(`{"id": "bare"}`))
	require.NoError(t, err)

	assert.Equal("bare", listing.ID)
	assert.Equal("", listing.Title)
	assert.Equal("", listing.Location.City)
	assert.Equal("CH", listing.Location.CountryCode)
	assert.Nil(listing.Location.Coordinates)
	assert.Equal(100, listing.Employment.WorkloadMin)
	assert.Equal(100, listing.Employment.WorkloadMax)
	assert.True(listing.Employment.IsPermanent)
	assert.Equal(1, listing.NumberOfPositions)
	assert.Nil(listing.Company.Name)

	assert.NotNil(listing.Descriptions)
	assert.Empty(listing.Descriptions)
	assert.NotNil(listing.Occupations)
	assert.Empty(listing.Occupations)
	assert.NotNil(listing.LanguageSkills)
	assert.Empty(listing.LanguageSkills)
	assert.NotNil(listing.Employment.WorkForms)
	assert.Empty(listing.Employment.WorkForms)

	assert.Nil(listing.Contact)
	assert.Nil(listing.Application)
	assert.Nil(listing.Publication)
	assert.Nil(listing.CreatedAt)
}

func Test_Transformer_Transform_MalformedValuesDegrade(t *testing.T) {
	assert := assert.New(t)

	listing, err := NewTransformer(Name, false).Transform(readTestdata(t, "minimal_record.json"))
	require.NoError(t, err)

	assert.Equal("min-1", listing.ID)
	assert.Nil(listing.CreatedAt)
	assert.Equal(1, listing.NumberOfPositions)
	assert.Empty(listing.Occupations)

	listing, err = NewTransformer(Name, false).Transform([]byte(`{
		"id": 42,
		"jobContent": {
			"location": {"city": "Bern", "coordinates": {"lat": "north", "lon": 7.44}},
			"employment": {"workloadPercentageMin": "eighty", "workloadPercentageMax": null, "permanent": "yes please"},
			"company": "not an object",
			"jobDescriptions": "not a list"
		}
	}`))
	require.NoError(t, err)

	assert.Equal("42", listing.ID)
	assert.Equal("Bern", listing.Location.City)
	assert.Nil(listing.Location.Coordinates)
	assert.Equal(100, listing.Employment.WorkloadMin)
	assert.Equal(100, listing.Employment.WorkloadMax)
	assert.True(listing.Employment.IsPermanent)
	assert.Nil(listing.Company.Name)
	assert.Empty(listing.Descriptions)
}

func Test_Transformer_Transform_CoordinatesNeedBothValues(t *testing.T) {
	listing, err := NewTransformer(Name, false).Transform([]byte(
		`{"jobContent": {"location": {"city": "Thun", "coordinates": {"lat": 46.75}}}}`))
	require.NoError(t, err)
	assert.Nil(t, listing.Location.Coordinates)
}

func Test_Transformer_Transform_IncludeRaw(t *testing.T) {
	raw := []byte(`{"id": "r1"}`)

	listing, err := NewTransformer(Name, true).Transform(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(listing.RawData))
}

func Test_Transformer_Transform_NotAnObject(t *testing.T) {
	for _, raw := range []string{`"text"`, `[1,2]`, `null`, `{broken`} {
		_, err := NewTransformer(Name, false).Transform([]byte(raw))

		var parseErr *errs.ResponseParseError
		assert.True(t, errors.As(err, &parseErr), raw)
	}
}

func Test_Transformer_TransformAll_SkipsBadRecords(t *testing.T) {
	records := []json.RawMessage{
		json.RawMessage(`{"id": "1"}`),
		json.RawMessage(`"garbage"`),
		json.RawMessage(`{"id": "3"}`),
	}

	listings := NewTransformer(Name, false).TransformAll(records)

	require.Len(t, listings, 2)
	assert.Equal(t, "1", listings[0].ID)
	assert.Equal(t, "3", listings[1].ID)
}
