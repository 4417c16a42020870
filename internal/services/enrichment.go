package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/logger"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const maxPromptDescription = 4000

const EnrichmentSystemPrompt = "You are a professional job listing analyzer and translator specializing in the Swiss job market. " +
	"Analyze job listings and extract the requested structured information. Answer with a single JSON object."

type aiClient interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// EnrichmentService derives translations and requirement analysis for listings.
// It never fails: when the model cannot be used the listing is echoed back in
// its original language and the result is marked degraded.
type EnrichmentService struct {
	aiClient aiClient
	features []models.AIFeature
}

func NewEnrichmentService(aiClient aiClient, features []models.AIFeature) *EnrichmentService {
	if len(features) == 0 {
		features = models.AllFeatures
	}
	return &EnrichmentService{aiClient: aiClient, features: lo.Uniq(features)}
}

func (s *EnrichmentService) Features() []models.AIFeature {
	return append([]models.AIFeature(nil), s.features...)
}

// Enrich runs the requested features for one listing. An empty feature set
// means the features the service was configured with.
func (s *EnrichmentService) Enrich(ctx context.Context, listing models.JobListing, features []models.AIFeature) models.Enrichment {
	features = lo.Uniq(features)
	if len(features) == 0 {
		features = s.features
	}

	if s.aiClient == nil {
		metrics.EnrichmentCounter.WithLabelValues("skipped").Inc()
		return degradedEnrichment(listing)
	}

	response, err := s.aiClient.GenerateJSON(ctx, buildEnrichmentPrompt(listing, features))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("AI processing failed for job %s: %v", listing.ID, err)
		metrics.EnrichmentCounter.WithLabelValues("failed").Inc()
		return degradedEnrichment(listing)
	}

	enrichment, err := parseEnrichment(listing.ID, response)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("unexpected AI response for job %s: %v", listing.ID, err)
		metrics.EnrichmentCounter.WithLabelValues("failed").Inc()
		return degradedEnrichment(listing)
	}

	metrics.EnrichmentCounter.WithLabelValues("ok").Inc()
	return enrichment
}

// EnrichBatch processes listings one after another, in order.
func (s *EnrichmentService) EnrichBatch(ctx context.Context, listings []models.JobListing, features []models.AIFeature) []models.Enrichment {
	results := make([]models.Enrichment, 0, len(listings))
	for _, listing := range listings {
		results = append(results, s.Enrich(ctx, listing, features))
	}
	return results
}

func degradedEnrichment(listing models.JobListing) models.Enrichment {
	description := ""
	if primary, ok := listing.PrimaryDescription(); ok {
		description = primary.Description
	}
	return models.Enrichment{
		OriginalID:        listing.ID,
		TitleEN:           lo.ToPtr(listing.Title),
		DescriptionEN:     lo.ToPtr(description),
		RequiredLanguages: []string{},
		ExperienceLevel:   models.ExperienceMid,
		SemanticKeywords:  []string{},
		Degraded:          true,
	}
}

func parseEnrichment(id string, response string) (models.Enrichment, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &fields); err != nil {
		return models.Enrichment{}, fmt.Errorf("response is not a JSON object: %w", err)
	}

	level := models.ExperienceMid
	if raw, ok := fields["experience_level"].(string); ok {
		level, _ = models.ToExperienceLevel(strings.ToLower(strings.TrimSpace(raw)))
	}

	return models.Enrichment{
		OriginalID:         id,
		TitleDE:            optionalString(fields, "title_de"),
		TitleFR:            optionalString(fields, "title_fr"),
		TitleIT:            optionalString(fields, "title_it"),
		TitleEN:            optionalString(fields, "title_en"),
		DescriptionDE:      optionalString(fields, "description_de"),
		DescriptionFR:      optionalString(fields, "description_fr"),
		DescriptionIT:      optionalString(fields, "description_it"),
		DescriptionEN:      optionalString(fields, "description_en"),
		RequiredLanguages:  stringList(fields, "required_languages", strings.ToLower),
		ExperienceLevel:    level,
		YearsExperienceMin: optionalInt(fields, "years_experience_min"),
		YearsExperienceMax: optionalInt(fields, "years_experience_max"),
		Education:          optionalString(fields, "education"),
		SemanticKeywords:   stringList(fields, "semantic_keywords", func(s string) string { return s }),
	}, nil
}

func stripCodeFence(response string) string {
	text := strings.TrimSpace(response)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func optionalString(fields map[string]any, key string) *string {
	value, ok := fields[key]
	if !ok || value == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(value))
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(fields map[string]any, key string) *int {
	value, ok := fields[key]
	if !ok || value == nil {
		return nil
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return nil
	}
	return &n
}

func stringList(fields map[string]any, key string, normalize func(string) string) []string {
	items, ok := fields[key].([]any)
	if !ok {
		return []string{}
	}
	values := lo.FilterMap(items, func(item any, _ int) (string, bool) {
		s := strings.TrimSpace(cast.ToString(item))
		return normalize(s), s != ""
	})
	return lo.Uniq(values)
}
