package jobroom

const (
	Name        = "job_room"
	DisplayName = "Job-Room.ch (SECO)"

	BaseURL        = "https://www.job-room.ch"
	APIBase        = BaseURL + apiPath
	SearchEndpoint = BaseURL + searchPath

	apiPath    = "/jobadservice/api/jobAdvertisements"
	searchPath = apiPath + "/_search"
)

// languageParams are the fixed values of the _ng query parameter the portal
// uses to pick the response language.
var languageParams = map[string]string{
	"en": "ZW4=",
	"de": "ZGU=",
	"fr": "ZnI=",
	"it": "aXQ=",
}

func languageParam(language string) string {
	if param, ok := languageParams[language]; ok {
		return param
	}
	return languageParams["en"]
}
