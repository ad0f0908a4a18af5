package model

// Profile describes who the user is and what they care about right now
type Profile struct {
	Role  string   `json:"role" yaml:"role"`
	Goals []string `json:"goals" yaml:"goals"`
	Avoid []string `json:"avoid" yaml:"avoid"`
	Focus []string `json:"focus" yaml:"focus"`
}

// Clone returns a deep copy so callers can mutate slices freely
func (p Profile) Clone() Profile {
	return Profile{
		Role:  p.Role,
		Goals: append([]string{}, p.Goals...),
		Avoid: append([]string{}, p.Avoid...),
		Focus: append([]string{}, p.Focus...),
	}
}

// ProfilePreset is a named starting profile
type ProfilePreset struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Profile Profile `json:"profile" yaml:"profile"`
}

// APIConfig points at an OpenAI-compatible endpoint
type APIConfig struct {
	BaseURL string `json:"baseUrl" yaml:"base_url" validate:"required,url,startswith=http"`
	APIKey  string `json:"apiKey" yaml:"api_key"`
	Model   string `json:"model" yaml:"model" validate:"required"`
}

// Settings are the user-owned options, mutated only through the settings store
type Settings struct {
	Enabled     bool      `json:"enabled" yaml:"enabled"`
	SkipDomains []string  `json:"skipDomains" yaml:"skip_domains" validate:"dive,required,hostname_rfc1123|ip"`
	Profile     Profile   `json:"profile" yaml:"profile"`
	APIConfig   APIConfig `json:"apiConfig" yaml:"api_config"`
}

// PageData is what the extraction collaborator returns for one page
type PageData struct {
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// Stats are the persisted usage counters
type Stats struct {
	PagesAnalyzed   int `json:"pagesAnalyzed" yaml:"pages_analyzed"`
	APICalls        int `json:"apiCalls" yaml:"api_calls"`
	TokensEstimated int `json:"tokensEstimated" yaml:"tokens_estimated"`
}
