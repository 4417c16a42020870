package jobroom

import (
	"encoding/json"
	"testing"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadJSON(t *testing.T, opts ...models.CriteriaOption) map[string]any {
	criteria, err := models.NewSearchCriteria(opts...)
	require.NoError(t, err)

	data, err := json.Marshal(BuildSearchPayload(criteria, NewLocations()))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func Test_BuildSearchPayload_Defaults(t *testing.T) {
	assert := assert.New(t)
	payload := payloadJSON(t)

	assert.Equal(map[string]any{
		"workloadPercentageMin": float64(10),
		"workloadPercentageMax": float64(100),
		"permanent":             nil,
		"companyName":           nil,
		"onlineSince":           float64(60),
		"displayRestricted":     false,
		"professionCodes":       []any{},
		"keywords":              []any{},
		"communalCodes":         []any{},
		"cantonCodes":           []any{},
	}, payload)
}

func Test_BuildSearchPayload_ContractType(t *testing.T) {
	tests := []struct {
		contractType models.ContractType
		expected     any
	}{
		{models.ContractAny, nil},
		{models.ContractPermanent, true},
		{models.ContractTemporary, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.contractType), func(t *testing.T) {
			payload := payloadJSON(t, models.WithContractType(tt.contractType))

			value, present := payload["permanent"]
			assert.True(t, present)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func Test_BuildSearchPayload_RadiusSearch(t *testing.T) {
	assert := assert.New(t)

	payload := payloadJSON(t)
	_, present := payload["radiusSearchRequest"]
	assert.False(present)

	payload = payloadJSON(t, models.WithRadiusSearch(47.405, 8.404, 30))
	assert.Equal(map[string]any{
		"geoPoint": map[string]any{"lat": 47.405, "lon": 8.404},
		"distance": float64(30),
	}, payload["radiusSearchRequest"])
}

func Test_BuildSearchPayload_KeywordsAndLocation(t *testing.T) {
	assert := assert.New(t)

	payload := payloadJSON(t,
		models.WithKeywords("golang", "kubernetes"),
		models.WithQuery("backend engineer"),
		models.WithCommunalCodes("351"),
		models.WithLocation("Zürich"),
		models.WithCantonCodes("ZH", "BE"),
		models.WithProfessionCodes("26110"),
		models.WithCompanyName("Helvetia Software AG"),
		models.WithWorkload(80, 100),
		models.WithPostedWithinDays(7),
		models.WithDisplayRestricted(true),
	)

	assert.Equal([]any{"golang", "kubernetes", "backend engineer"}, payload["keywords"])
	assert.Equal([]any{"351", "261"}, payload["communalCodes"])
	assert.Equal([]any{"ZH", "BE"}, payload["cantonCodes"])
	assert.Equal([]any{"26110"}, payload["professionCodes"])
	assert.Equal("Helvetia Software AG", payload["companyName"])
	assert.Equal(float64(80), payload["workloadPercentageMin"])
	assert.Equal(float64(7), payload["onlineSince"])
	assert.Equal(true, payload["displayRestricted"])
}

func Test_BuildSearchPayload_UnknownLocationContributesNothing(t *testing.T) {
	payload := payloadJSON(t, models.WithLocation("Atlantis"))
	assert.Equal(t, []any{}, payload["communalCodes"])
}

func Test_BuildSearchPayload_DoesNotAliasCriteria(t *testing.T) {
	criteria, err := models.NewSearchCriteria(models.WithCommunalCodes("351"), models.WithLocation("Zürich"))
	require.NoError(t, err)

	BuildSearchPayload(criteria, NewLocations())
	assert.Equal(t, []string{"351"}, criteria.CommunalCodes)
}

func Test_BuildLanguageSkills(t *testing.T) {
	skills := BuildLanguageSkills([]models.LanguageSkillFilter{
		{LanguageCode: "de", SpokenLevel: models.LevelProficient},
		{LanguageCode: "en"},
	})

	data, err := json.Marshal(skills)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"languageIsoCode": "de", "spokenLevel": "PROFICIENT"},
		{"languageIsoCode": "en"}
	]`, string(data))
}

func Test_BuildSearchURL(t *testing.T) {
	criteria, err := models.NewSearchCriteria(
		models.WithPage(2, 50),
		models.WithSort(models.SortDateDesc),
		models.WithLanguage("de"),
	)
	require.NoError(t, err)

	assert.Equal(t,
		"https://www.job-room.ch/jobadservice/api/jobAdvertisements/_search?page=2&size=50&sort=date_desc&_ng=ZGU=",
		BuildSearchURL(criteria))
}

func Test_BuildSearchURL_LanguagesAndSort(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		language string
		sort     models.SortOrder
		query    string
	}{
		{"en", models.SortRelevance, "?page=0&size=20&sort=relevance&_ng=ZW4="},
		{"fr", models.SortDateAsc, "?page=0&size=20&sort=date_asc&_ng=ZnI="},
		{"it", models.SortDateDesc, "?page=0&size=20&sort=date_desc&_ng=aXQ="},
	}

	for _, tt := range tests {
		criteria, err := models.NewSearchCriteria(models.WithLanguage(tt.language), models.WithSort(tt.sort))
		assert.NoError(err)
		assert.Equal(SearchEndpoint+tt.query, BuildSearchURL(criteria))
	}

	assert.Equal("ZW4=", languageParam("rm"))
}
