package settings

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/storage"
)

func newTestStore(t *testing.T, env map[string]string) (*Store, *storage.MemoryStore) {
	t.Helper()
	kv := storage.NewMemoryStore()
	s := NewStore(kv)
	s.getenv = func(name string) string { return env[name] }
	return s, kv
}

func TestStore_DefaultsWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t, nil)

	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(model.DefaultSettings(), got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_DeepMergePartialAPIConfig(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t, nil)
	_ = kv.Set(ctx, settingsKey, []byte(`{"apiConfig":{"apiKey":"sk-test"}}`))

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.APIConfig.APIKey != "sk-test" {
		t.Errorf("expected stored key, got %q", got.APIConfig.APIKey)
	}
	if got.APIConfig.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %q", got.APIConfig.BaseURL)
	}
	if got.APIConfig.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", got.APIConfig.Model)
	}
	if !got.Enabled {
		t.Error("expected default enabled=true")
	}
}

func TestStore_DeepMergePartialProfile(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t, nil)
	_ = kv.Set(ctx, settingsKey, []byte(`{"profile":{"role":"Custom Role"},"enabled":false}`))

	got, _ := s.Get(ctx)
	if got.Profile.Role != "Custom Role" {
		t.Errorf("expected Custom Role, got %q", got.Profile.Role)
	}
	if got.Profile.Goals == nil || len(got.Profile.Goals) != 0 {
		t.Errorf("expected empty goals, got %v", got.Profile.Goals)
	}
	if got.Enabled {
		t.Error("expected stored enabled=false to win")
	}
	if len(got.SkipDomains) != len(model.DefaultSkipDomains()) {
		t.Errorf("expected default skip list, got %d entries", len(got.SkipDomains))
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	want := model.DefaultSettings()
	want.Enabled = false
	want.SkipDomains = []string{"example.com"}
	want.Profile = model.Profile{Role: "Indie Developer", Goals: []string{"Ship"}, Avoid: []string{}, Focus: []string{"go"}}
	want.APIConfig = model.APIConfig{BaseURL: "https://custom.api.com", APIKey: "sk-test", Model: "gpt-5-nano"}

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	s, _ := newTestStore(t, nil)

	bad := model.DefaultSettings()
	bad.APIConfig.BaseURL = "garbage"
	if err := s.Save(context.Background(), bad); err == nil {
		t.Error("expected error for invalid base URL")
	}
}

func TestStore_EnvKeyFallback(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestStore(t, map[string]string{"OPENAI_API_KEY": "sk-openai", "FOCUSONLY_API_KEY": "sk-focus"})
	got, _ := s.Get(ctx)
	if got.APIConfig.APIKey != "sk-focus" {
		t.Errorf("expected FOCUSONLY_API_KEY to win, got %q", got.APIConfig.APIKey)
	}

	s, kv := newTestStore(t, map[string]string{"OPENAI_API_KEY": "sk-openai"})
	_ = kv.Set(ctx, settingsKey, []byte(`{"apiConfig":{"apiKey":"sk-stored"}}`))
	got, _ = s.Get(ctx)
	if got.APIConfig.APIKey != "sk-stored" {
		t.Errorf("expected stored key to win over env, got %q", got.APIConfig.APIKey)
	}
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	_, err := s.Update(ctx, func(st *model.Settings) { st.Enabled = false })
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := s.Get(ctx)
	if got.Enabled {
		t.Error("expected enabled=false after update")
	}
}

func TestStore_UpdateDoesNotPersistEnvKey(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t, map[string]string{"FOCUSONLY_API_KEY": "sk-env"})

	got, err := s.Update(ctx, func(st *model.Settings) { st.Enabled = false })
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.APIConfig.APIKey != "sk-env" {
		t.Errorf("expected env key on the returned settings, got %q", got.APIConfig.APIKey)
	}

	raw, found, _ := kv.Get(ctx, settingsKey)
	if !found {
		t.Fatal("expected settings to be stored")
	}
	if strings.Contains(string(raw), "sk-env") {
		t.Errorf("env key was written to storage: %s", raw)
	}
}

func TestDefaultSettings_NotShared(t *testing.T) {
	a := model.DefaultSettings()
	a.SkipDomains[0] = "mutated.example"
	preset, _ := model.PresetByID("solo-founder")
	preset.Profile.Goals = append(preset.Profile.Goals, "New goal")

	b := model.DefaultSettings()
	if b.SkipDomains[0] == "mutated.example" {
		t.Error("expected DefaultSettings to return a fresh skip list")
	}
	fresh, _ := model.PresetByID("solo-founder")
	for _, g := range fresh.Profile.Goals {
		if g == "New goal" {
			t.Error("expected presets not to be mutated by reference")
		}
	}
}

func TestStatsStore(t *testing.T) {
	ctx := context.Background()
	s := NewStatsStore(storage.NewMemoryStore())

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != (model.Stats{}) {
		t.Errorf("expected zero stats, got %+v", got)
	}

	_ = s.RecordAnalysis(ctx, 300)
	_ = s.RecordAnalysis(ctx, 250)

	got, _ = s.Get(ctx)
	want := model.Stats{PagesAnalyzed: 2, APICalls: 2, TokensEstimated: 550}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	got, _ = s.Get(ctx)
	if got != (model.Stats{}) {
		t.Errorf("expected zero stats after reset, got %+v", got)
	}
}

func TestStatsStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	s := NewStatsStore(storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RecordAnalysis(ctx, 10)
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx)
	if got.PagesAnalyzed != 50 || got.TokensEstimated != 500 {
		t.Errorf("expected 50 pages / 500 tokens, got %+v", got)
	}
}
