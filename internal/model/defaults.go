package model

import "time"

const (
	CacheTTL         = 7 * 24 * time.Hour
	ContentCharLimit = 12000
	MinExcerptChars  = 50
	APITimeout       = 15 * time.Second
	ProbeTimeout     = 10 * time.Second
	MaxAttempts      = 3
	DebounceDelay    = 2 * time.Second

	// PromptOverheadTokens approximates system prompt plus response size
	PromptOverheadTokens = 200
)

// DefaultProfile is an empty profile
func DefaultProfile() Profile {
	return Profile{Goals: []string{}, Avoid: []string{}, Focus: []string{}}
}

// DefaultAPIConfig targets the public OpenAI endpoint
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	}
}

// DefaultSkipDomains are sites where a verdict makes no sense
func DefaultSkipDomains() []string {
	return []string{
		// Productivity apps
		"mail.google.com",
		"calendar.google.com",
		"docs.google.com",
		"sheets.google.com",
		"drive.google.com",
		"notion.so",
		"figma.com",
		"linear.app",
		"slack.com",
		"discord.com",
		"trello.com",
		"asana.com",
		// Media
		"youtube.com",
		"netflix.com",
		"spotify.com",
		"twitch.tv",
		// Social
		"facebook.com",
		"instagram.com",
		"tiktok.com",
		// Dev tools
		"github.com",
		"gitlab.com",
		"localhost",
		"127.0.0.1",
		"0.0.0.0",
	}
}

// SkipURLPrefixes are browser-internal schemes that are never analyzed
var SkipURLPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"about:",
	"file://",
	"edge://",
	"moz-extension://",
	"devtools://",
}

// DefaultSettings returns a fresh copy of the built-in settings
func DefaultSettings() Settings {
	return Settings{
		Enabled:     true,
		SkipDomains: DefaultSkipDomains(),
		Profile:     DefaultProfile(),
		APIConfig:   DefaultAPIConfig(),
	}
}

// Presets returns the built-in profile presets
func Presets() []ProfilePreset {
	return []ProfilePreset{
		{
			ID:   "solo-founder",
			Name: "Solo Founder",
			Profile: Profile{
				Role: "Solo Founder",
				Goals: []string{
					"Find product-market fit",
					"Learn distribution and growth tactics",
					"Understand pricing strategies",
					"Ship faster with fewer resources",
				},
				Avoid: []string{
					"Enterprise sales processes",
					"VC fundraising advice",
					"Large team management",
					"Corporate strategy frameworks",
				},
				Focus: []string{"bootstrapping", "indie products", "solo business"},
			},
		},
		{
			ID:   "growth-marketer",
			Name: "Growth Marketer",
			Profile: Profile{
				Role: "Growth Marketer",
				Goals: []string{
					"Discover acquisition channels",
					"Improve conversion rates",
					"Learn analytics and attribution",
					"Understand content-led growth",
				},
				Avoid: []string{
					"Brand strategy theory",
					"Agency pitch decks",
					"Enterprise marketing automation",
					"Traditional advertising",
				},
				Focus: []string{"growth", "SEO", "conversion", "analytics"},
			},
		},
		{
			ID:   "indie-developer",
			Name: "Indie Developer",
			Profile: Profile{
				Role: "Indie Developer",
				Goals: []string{
					"Ship side projects faster",
					"Learn modern developer tools",
					"Understand technical architecture patterns",
					"Build in public and grow audience",
				},
				Avoid: []string{
					"Management and leadership advice",
					"Team scaling processes",
					"Enterprise software procurement",
					"Corporate DevOps pipelines",
				},
				Focus: []string{"coding", "dev tools", "side projects", "open source"},
			},
		},
		{
			ID:   "content-creator",
			Name: "Content Creator",
			Profile: Profile{
				Role: "Content Creator",
				Goals: []string{
					"Grow audience across platforms",
					"Improve writing and storytelling craft",
					"Monetize content effectively",
					"Build a personal brand",
				},
				Avoid: []string{
					"Corporate marketing strategies",
					"Enterprise content management",
					"Agency workflow tools",
					"B2B content syndication",
				},
				Focus: []string{"writing", "audience growth", "monetization", "creator economy"},
			},
		},
	}
}

// PresetByID looks up a preset, returning false when unknown
func PresetByID(id string) (ProfilePreset, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return ProfilePreset{}, false
}
