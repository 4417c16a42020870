package services

import (
	"fmt"
	"strings"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/samber/lo"
)

type promptPart struct {
	instruction string
	fields      []string
	rules       []string
}

var promptParts = map[models.AIFeature]promptPart{
	models.FeatureTranslation: {
		instruction: "Translate the title and description to German, French, Italian and English.",
		fields: []string{
			`"title_de": "German title"`, `"title_fr": "French title"`,
			`"title_it": "Italian title"`, `"title_en": "English title"`,
			`"description_de": "German description"`, `"description_fr": "French description"`,
			`"description_it": "Italian description"`, `"description_en": "English description"`,
		},
		rules: []string{"If a language is the original, still include it"},
	},
	models.FeatureLanguages: {
		instruction: "Extract the language requirements mentioned in the job description.",
		fields:      []string{`"required_languages": ["de", "en"]`},
		rules:       []string{"For required_languages, use ISO 639-1 codes"},
	},
	models.FeatureExperience: {
		instruction: "Determine the experience level from the actual requirements, not from the job title. " +
			"Levels: entry (0 years, graduates welcome), junior (0-2 years), mid (2-5 years), " +
			"senior (5-8 years), lead (8+ years, team leadership), principal (10+ years, architect level).",
		fields: []string{`"experience_level": "mid"`, `"years_experience_min": 2`, `"years_experience_max": 5`},
		rules: []string{
			"experience_level must be one of: entry, junior, mid, senior, lead, principal",
			"years_experience_min/max can be null if impossible to determine",
		},
	},
	models.FeatureEducation: {
		instruction: `Extract the required education level as a short summary, e.g. "University degree", "Apprenticeship".`,
		fields:      []string{`"education": "University degree in CS or similar"`},
		rules:       []string{"education should be short and normalized"},
	},
	models.FeatureKeywords: {
		instruction: "Extract semantic search keywords: technologies, methodologies, important soft skills and domain knowledge.",
		fields:      []string{`"semantic_keywords": ["Python", "API", "Banking"]`},
		rules:       []string{"semantic_keywords should be single words or short phrases"},
	},
}

func buildEnrichmentPrompt(listing models.JobListing, features []models.AIFeature) string {
	description, language := "", "en"
	if primary, ok := listing.PrimaryDescription(); ok {
		description, language = primary.Description, primary.LanguageCode
	}
	if runes := []rune(description); len(runes) > maxPromptDescription {
		description = string(runes[:maxPromptDescription])
	}

	var instructions, fields, rules []string
	for i, feature := range lo.Filter(models.AllFeatures, func(f models.AIFeature, _ int) bool {
		return lo.Contains(features, f)
	}) {
		part := promptParts[feature]
		instructions = append(instructions, fmt.Sprintf("%d. %s", i+1, part.instruction))
		fields = append(fields, part.fields...)
		rules = append(rules, part.rules...)
	}

	var b strings.Builder
	b.WriteString("Analyze this job listing and provide the requested information.\n\n")
	b.WriteString("Requested analysis:\n")
	b.WriteString(strings.Join(instructions, "\n"))
	fmt.Fprintf(&b, "\n\nJob title: %s\n\nJob description:\n%s\n\nOriginal language: %s\n\n", listing.Title, description, language)
	b.WriteString("Respond in this exact JSON format:\n{\n    ")
	b.WriteString(strings.Join(fields, ",\n    "))
	b.WriteString("\n}\n\nRules:\n- ")
	b.WriteString(strings.Join(rules, "\n- "))
	return b.String()
}
