package models

type HealthStatus string

const (
	Healthy     HealthStatus = "healthy"
	Degraded    HealthStatus = "degraded"
	Unavailable HealthStatus = "unavailable"
)

type ProviderHealth struct {
	Provider  string       `json:"provider"`
	Status    HealthStatus `json:"status"`
	LatencyMs int64        `json:"latency_ms"`
	Message   string       `json:"message"`
}

type ProviderCapabilities struct {
	SupportsRadiusSearch    bool        `json:"supports_radius_search"`
	SupportsCantonFilter    bool        `json:"supports_canton_filter"`
	SupportsProfessionCodes bool        `json:"supports_profession_codes"`
	SupportsLanguageSkills  bool        `json:"supports_language_skills"`
	SupportsCompanyFilter   bool        `json:"supports_company_filter"`
	SupportsWorkForms       bool        `json:"supports_work_forms"`
	MaxPageSize             int         `json:"max_page_size"`
	SupportedLanguages      []string    `json:"supported_languages"`
	SupportedSortOrders     []SortOrder `json:"supported_sort_orders"`
}

type UpsertCounts struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}
