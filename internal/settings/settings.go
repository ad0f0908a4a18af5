// Package settings persists user settings and usage counters in the shared store.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/storage"
	"github.com/tomaslau/focusonly/internal/validate"
)

const settingsKey = "focusonly_settings"

// API key environment fallbacks, checked in order
var apiKeyEnvVars = []string{"FOCUSONLY_API_KEY", "OPENAI_API_KEY"}

// Store reads and writes Settings
type Store struct {
	kv     storage.Store
	getenv func(string) string
}

// NewStore creates a settings store on top of kv
func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv, getenv: os.Getenv}
}

// stored mirrors Settings with pointers so missing fields can be told apart
// from zero values during the merge.
type stored struct {
	Enabled     *bool     `json:"enabled"`
	SkipDomains *[]string `json:"skipDomains"`
	Profile     *struct {
		Role  *string   `json:"role"`
		Goals *[]string `json:"goals"`
		Avoid *[]string `json:"avoid"`
		Focus *[]string `json:"focus"`
	} `json:"profile"`
	APIConfig *struct {
		BaseURL *string `json:"baseUrl"`
		APIKey  *string `json:"apiKey"`
		Model   *string `json:"model"`
	} `json:"apiConfig"`
}

// Get returns the stored settings merged over the defaults, including
// nested profile and API config fields. A missing key falls back to the environment.
func (s *Store) Get(ctx context.Context) (model.Settings, error) {
	out, err := s.load(ctx)
	if err != nil {
		return out, err
	}
	s.applyEnvKey(&out)
	return out, nil
}

func (s *Store) load(ctx context.Context) (model.Settings, error) {
	out := model.DefaultSettings()

	data, found, err := s.kv.Get(ctx, settingsKey)
	if err != nil {
		return out, fmt.Errorf("read settings: %w", err)
	}
	if found {
		var st stored
		if err := json.Unmarshal(data, &st); err != nil {
			return out, fmt.Errorf("decode settings: %w", err)
		}
		merge(&out, st)
	}
	return out, nil
}

func (s *Store) applyEnvKey(out *model.Settings) {
	if out.APIConfig.APIKey != "" {
		return
	}
	for _, name := range apiKeyEnvVars {
		if v := s.getenv(name); v != "" {
			out.APIConfig.APIKey = v
			return
		}
	}
}

// Save validates and persists settings
func (s *Store) Save(ctx context.Context, settings model.Settings) error {
	if err := validate.Settings(settings); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, settingsKey, data); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Update applies fn to the stored settings and saves the result.
// A key coming from the environment is never written to the store.
func (s *Store) Update(ctx context.Context, fn func(*model.Settings)) (model.Settings, error) {
	current, err := s.load(ctx)
	if err != nil {
		return current, err
	}
	fn(&current)
	if err := s.Save(ctx, current); err != nil {
		return current, err
	}
	s.applyEnvKey(&current)
	return current, nil
}

func merge(out *model.Settings, st stored) {
	if st.Enabled != nil {
		out.Enabled = *st.Enabled
	}
	if st.SkipDomains != nil {
		out.SkipDomains = nonNil(*st.SkipDomains)
	}
	if p := st.Profile; p != nil {
		if p.Role != nil {
			out.Profile.Role = *p.Role
		}
		if p.Goals != nil {
			out.Profile.Goals = nonNil(*p.Goals)
		}
		if p.Avoid != nil {
			out.Profile.Avoid = nonNil(*p.Avoid)
		}
		if p.Focus != nil {
			out.Profile.Focus = nonNil(*p.Focus)
		}
	}
	if a := st.APIConfig; a != nil {
		if a.BaseURL != nil {
			out.APIConfig.BaseURL = *a.BaseURL
		}
		if a.APIKey != nil {
			out.APIConfig.APIKey = *a.APIKey
		}
		if a.Model != nil {
			out.APIConfig.Model = *a.Model
		}
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
