package models

type AIFeature string

const (
	FeatureTranslation AIFeature = "translation"
	FeatureExperience  AIFeature = "experience"
	FeatureLanguages   AIFeature = "languages"
	FeatureEducation   AIFeature = "education"
	FeatureKeywords    AIFeature = "keywords"
)

var AllFeatures = []AIFeature{FeatureTranslation, FeatureExperience, FeatureLanguages, FeatureEducation, FeatureKeywords}

type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceJunior    ExperienceLevel = "junior"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperiencePrincipal ExperienceLevel = "principal"
)

func ToExperienceLevel(s string) (ExperienceLevel, bool) {
	switch level := ExperienceLevel(s); level {
	case ExperienceEntry, ExperienceJunior, ExperienceMid, ExperienceSenior, ExperienceLead, ExperiencePrincipal:
		return level, true
	default:
		return ExperienceMid, false
	}
}

// ExperienceLevelFromYears classifies by minimum years of experience required.
func ExperienceLevelFromYears(years *int) ExperienceLevel {
	switch {
	case years == nil || *years == 0:
		return ExperienceEntry
	case *years <= 2:
		return ExperienceJunior
	case *years <= 5:
		return ExperienceMid
	case *years <= 8:
		return ExperienceSenior
	case *years <= 10:
		return ExperienceLead
	default:
		return ExperiencePrincipal
	}
}

// Enrichment holds AI derived attributes keyed by the listing id.
type Enrichment struct {
	OriginalID         string          `json:"original_id"`
	TitleDE            *string         `json:"title_de"`
	TitleFR            *string         `json:"title_fr"`
	TitleIT            *string         `json:"title_it"`
	TitleEN            *string         `json:"title_en"`
	DescriptionDE      *string         `json:"description_de"`
	DescriptionFR      *string         `json:"description_fr"`
	DescriptionIT      *string         `json:"description_it"`
	DescriptionEN      *string         `json:"description_en"`
	RequiredLanguages  []string        `json:"required_languages"`
	ExperienceLevel    ExperienceLevel `json:"experience_level"`
	YearsExperienceMin *int            `json:"years_experience_min"`
	YearsExperienceMax *int            `json:"years_experience_max"`
	Education          *string         `json:"education"`
	SemanticKeywords   []string        `json:"semantic_keywords"`
	Degraded           bool            `json:"degraded"`
}
