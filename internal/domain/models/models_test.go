package models

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchCriteria_Defaults(t *testing.T) {
	assert := assert.New(t)

	criteria, err := NewSearchCriteria()
	require.NoError(t, err)

	assert.Equal(10, criteria.WorkloadMin)
	assert.Equal(100, criteria.WorkloadMax)
	assert.Equal(ContractAny, criteria.ContractType)
	assert.Equal(60, criteria.PostedWithinDays)
	assert.False(criteria.DisplayRestricted)
	assert.Equal(0, criteria.Page)
	assert.Equal(20, criteria.PageSize)
	assert.Equal(SortDateDesc, criteria.Sort)
	assert.Equal("en", criteria.Language)
	assert.Nil(criteria.RadiusSearch)
}

func TestNewSearchCriteria_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  CriteriaOption
	}{
		{"workload min above max", WithWorkload(80, 50)},
		{"workload above 100", WithWorkload(10, 120)},
		{"page size too large", WithPage(0, 101)},
		{"negative page", WithPage(-1, 20)},
		{"posted within too long", WithPostedWithinDays(366)},
		{"unknown contract", WithContractType("forever")},
		{"unknown sort", WithSort("random")},
		{"unknown language", WithLanguage("rm")},
		{"radius too large", WithRadiusSearch(47.3, 8.5, 900)},
		{"latitude out of range", WithRadiusSearch(120, 8.5, 10)},
		{"bad language skill", WithLanguageSkills(LanguageSkillFilter{LanguageCode: "deu"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSearchCriteria(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestNewSearchCriteria_PostedWithinYear(t *testing.T) {
	criteria, err := NewSearchCriteria(WithPostedWithinDays(365))
	require.NoError(t, err)
	assert.Equal(t, 365, criteria.PostedWithinDays)

	_, err = NewSearchCriteria(WithPostedWithinDays(90))
	assert.NoError(t, err)
}

func TestNewSearchCriteria_OptionsCopySlices(t *testing.T) {
	cantons := []string{"ZH"}
	criteria, err := NewSearchCriteria(WithCantonCodes(cantons...), WithCompanyName("Muster AG"))
	require.NoError(t, err)

	cantons[0] = "BE"
	assert.Equal(t, []string{"ZH"}, criteria.CantonCodes)
	assert.Equal(t, "Muster AG", *criteria.CompanyName)
}

func TestExperienceLevelFromYears(t *testing.T) {
	tests := []struct {
		years *int
		want  ExperienceLevel
	}{
		{nil, ExperienceEntry},
		{lo.ToPtr(0), ExperienceEntry},
		{lo.ToPtr(1), ExperienceJunior},
		{lo.ToPtr(2), ExperienceJunior},
		{lo.ToPtr(5), ExperienceMid},
		{lo.ToPtr(8), ExperienceSenior},
		{lo.ToPtr(10), ExperienceLead},
		{lo.ToPtr(11), ExperiencePrincipal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExperienceLevelFromYears(tt.years))
	}
}

func TestToExperienceLevel(t *testing.T) {
	level, ok := ToExperienceLevel("principal")
	assert.True(t, ok)
	assert.Equal(t, ExperiencePrincipal, level)

	level, ok = ToExperienceLevel("guru")
	assert.False(t, ok)
	assert.Equal(t, ExperienceMid, level)
}

func TestContentHash(t *testing.T) {
	assert := assert.New(t)

	listing := JobListing{
		ID:           "1",
		Title:        "Koch",
		Descriptions: []JobDescription{{LanguageCode: "de", Title: "Koch", Description: "Kochen"}},
		Company:      CompanyInfo{Name: lo.ToPtr("Hotel Alpina")},
	}
	hash := listing.ContentHash()
	assert.Len(hash, 64)

	other := listing
	other.ID = "2"
	other.Location.City = "Chur"
	assert.Equal(hash, other.ContentHash(), "only title, descriptions and company count")

	changed := listing
	changed.Descriptions = []JobDescription{{LanguageCode: "de", Title: "Koch", Description: "Kochen und backen"}}
	assert.NotEqual(hash, changed.ContentHash())

	renamed := listing
	renamed.Company.Name = lo.ToPtr("Hotel Bellevue")
	assert.NotEqual(hash, renamed.ContentHash())
}

func TestContentHash_FieldBoundaries(t *testing.T) {
	first := JobListing{
		Title:        "Koch",
		Descriptions: []JobDescription{{LanguageCode: "de", Title: "a:b", Description: "c"}},
	}
	second := JobListing{
		Title:        "Koch",
		Descriptions: []JobDescription{{LanguageCode: "de", Title: "a", Description: "b:c"}},
	}
	assert.NotEqual(t, first.ContentHash(), second.ContentHash())

	split := JobListing{
		Title: "Koch|de:x:y",
	}
	joined := JobListing{
		Title:        "Koch",
		Descriptions: []JobDescription{{LanguageCode: "de", Title: "x", Description: "y"}},
	}
	assert.NotEqual(t, split.ContentHash(), joined.ContentHash())
}

func TestSearchResult_HasMore(t *testing.T) {
	assert.True(t, SearchResult{Page: 0, TotalPages: 2}.HasMore())
	assert.False(t, SearchResult{Page: 1, TotalPages: 2}.HasMore())
	assert.False(t, SearchResult{Page: 0, TotalPages: 0}.HasMore())
}
