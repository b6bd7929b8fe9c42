package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("COMPETITOR_BOT_CONFIG", "")
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("OPENAI_KEY", "sk-env")
	t.Setenv("ASSISTANT_ID", "asst_env")
	t.Setenv("BING_KEY", "bing-env")
	t.Setenv("DISCORD_GUILD_ID", "")

	cfg := Load()

	if cfg.Discord.Token != "tok" || cfg.Assistant.APIKey != "sk-env" || cfg.Assistant.AssistantID != "asst_env" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.News.APIKey != "bing-env" {
		t.Fatalf("news key override not applied: %+v", cfg.News)
	}
	if cfg.Assistant.RunTimeout() != 90*time.Second {
		t.Fatalf("unexpected default run timeout %v", cfg.Assistant.RunTimeout())
	}
	if cfg.Assistant.PollInterval() != time.Second {
		t.Fatalf("unexpected default poll interval %v", cfg.Assistant.PollInterval())
	}
	if cfg.Research.MaxSources != 15 || cfg.Research.MaxDocumentChars != 20000 || cfg.Research.ExcerptChars != 3000 {
		t.Fatalf("unexpected research defaults: %+v", cfg.Research)
	}
	if !cfg.Research.ResearchEnabled() {
		t.Fatal("research should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("configured credentials should validate: %v", err)
	}
}

func TestFileMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
logging:
  level: debug
assistant:
  runTimeoutSeconds: 120
research:
  enabled: false
competitors:
  - key: proxmox
    domains: [proxmox.com]
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("COMPETITOR_BOT_CONFIG", path)
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("OPENAI_KEY", "sk")
	t.Setenv("ASSISTANT_ID", "asst")
	t.Setenv("BING_KEY", "")
	t.Setenv("DISCORD_GUILD_ID", "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file logging level not merged: %+v", cfg.Logging)
	}
	if cfg.Assistant.RunTimeout() != 120*time.Second {
		t.Fatalf("file timeout not merged: %v", cfg.Assistant.RunTimeout())
	}
	if cfg.Research.ResearchEnabled() {
		t.Fatal("research.enabled=false not merged")
	}
	if len(cfg.Competitors) != 1 || cfg.Competitors[0].Key != "proxmox" {
		t.Fatalf("competitors not merged: %+v", cfg.Competitors)
	}
	// defaults must survive a partial file
	if cfg.News.Count != 8 || cfg.News.Freshness != "Week" {
		t.Fatalf("news defaults lost in merge: %+v", cfg.News)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing discord token", Config{Assistant: AssistantConfig{APIKey: "k", AssistantID: "a"}}},
		{"missing api key", Config{Discord: DiscordConfig{Token: "t"}, Assistant: AssistantConfig{AssistantID: "a"}}},
		{"missing assistant id", Config{Discord: DiscordConfig{Token: "t"}, Assistant: AssistantConfig{APIKey: "k"}}},
	}

	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Fatalf("%s: expected a validation error", tc.name)
		}
	}
}
