package jobroom

import (
	"fmt"
	"net/url"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type GeoPointPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type RadiusSearchPayload struct {
	GeoPoint GeoPointPayload `json:"geoPoint"`
	Distance int             `json:"distance"`
}

// SearchPayload is the body of the _search request. The portal rejects
// bodies that leave out keys, so only radiusSearchRequest may be omitted.
type SearchPayload struct {
	WorkloadPercentageMin int                  `json:"workloadPercentageMin"`
	WorkloadPercentageMax int                  `json:"workloadPercentageMax"`
	Permanent             *bool                `json:"permanent"`
	CompanyName           *string              `json:"companyName"`
	OnlineSince           int                  `json:"onlineSince"`
	DisplayRestricted     bool                 `json:"displayRestricted"`
	ProfessionCodes       []string             `json:"professionCodes"`
	Keywords              []string             `json:"keywords"`
	CommunalCodes         []string             `json:"communalCodes"`
	CantonCodes           []string             `json:"cantonCodes"`
	RadiusSearchRequest   *RadiusSearchPayload `json:"radiusSearchRequest,omitempty"`
}

type LanguageSkillPayload struct {
	LanguageIsoCode string `json:"languageIsoCode"`
	SpokenLevel     string `json:"spokenLevel,omitempty"`
	WrittenLevel    string `json:"writtenLevel,omitempty"`
}

func BuildSearchPayload(criteria models.SearchCriteria, resolver LocationResolver) SearchPayload {
	communalCodes := append([]string{}, criteria.CommunalCodes...)
	if criteria.Location != "" && resolver != nil {
		communalCodes = append(communalCodes, resolver.ResolveSafe(criteria.Location)...)
	}

	keywords := append([]string{}, criteria.Keywords...)
	if criteria.Query != "" {
		keywords = append(keywords, criteria.Query)
	}

	payload := SearchPayload{
		WorkloadPercentageMin: criteria.WorkloadMin,
		WorkloadPercentageMax: criteria.WorkloadMax,
		Permanent:             permanentFilter(criteria.ContractType),
		CompanyName:           criteria.CompanyName,
		OnlineSince:           criteria.PostedWithinDays,
		DisplayRestricted:     criteria.DisplayRestricted,
		ProfessionCodes:       append([]string{}, criteria.ProfessionCodes...),
		Keywords:              keywords,
		CommunalCodes:         communalCodes,
		CantonCodes:           append([]string{}, criteria.CantonCodes...),
	}

	if r := criteria.RadiusSearch; r != nil {
		payload.RadiusSearchRequest = &RadiusSearchPayload{
			GeoPoint: GeoPointPayload{Lat: r.GeoPoint.Lat, Lon: r.GeoPoint.Lon},
			Distance: r.Distance,
		}
	}

	log.Debugf("built search payload: %+v", payload)
	return payload
}

func permanentFilter(contractType models.ContractType) *bool {
	switch contractType {
	case models.ContractPermanent:
		return lo.ToPtr(true)
	case models.ContractTemporary:
		return lo.ToPtr(false)
	default:
		return nil
	}
}

// BuildLanguageSkills maps language requirements to the portal's filter
// entries. Unset levels are left out.
func BuildLanguageSkills(skills []models.LanguageSkillFilter) []LanguageSkillPayload {
	return lo.Map(skills, func(s models.LanguageSkillFilter, _ int) LanguageSkillPayload {
		return LanguageSkillPayload{
			LanguageIsoCode: s.LanguageCode,
			SpokenLevel:     string(s.SpokenLevel),
			WrittenLevel:    string(s.WrittenLevel),
		}
	})
}

var sortParams = map[models.SortOrder]string{
	models.SortDateDesc:  "date_desc",
	models.SortDateAsc:   "date_asc",
	models.SortRelevance: "relevance",
}

func BuildSearchURL(criteria models.SearchCriteria) string {
	return buildSearchURL(BaseURL, criteria)
}

func buildSearchURL(baseURL string, criteria models.SearchCriteria) string {
	sort, ok := sortParams[criteria.Sort]
	if !ok {
		sort = "date_desc"
	}
	return fmt.Sprintf("%s%s?page=%d&size=%d&sort=%s&_ng=%s",
		baseURL, searchPath, criteria.Page, criteria.PageSize, sort, languageParam(criteria.Language))
}

func buildDetailsURL(baseURL, id, language string) string {
	return fmt.Sprintf("%s%s/%s?_ng=%s", baseURL, apiPath, url.PathEscape(id), languageParam(language))
}
