package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "COMPETITOR_BOT_CONFIG"
	discordTokenEnv = "DISCORD_TOKEN"
	guildIDEnv      = "DISCORD_GUILD_ID"
	openAIKeyEnv    = "OPENAI_KEY"
	assistantIDEnv  = "ASSISTANT_ID"
	bingKeyEnv      = "BING_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig      `yaml:"logging"`
	Discord     DiscordConfig      `yaml:"discord"`
	Assistant   AssistantConfig    `yaml:"assistant"`
	News        NewsConfig         `yaml:"news"`
	Research    ResearchConfig     `yaml:"research"`
	Competitors []CompetitorConfig `yaml:"competitors"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DiscordConfig wires the chat-platform session.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	GuildID string `yaml:"guildId"`
	Prefix  string `yaml:"prefix"`
}

// AssistantConfig defines how to contact the remote assistant-run API.
type AssistantConfig struct {
	Endpoint           string `yaml:"endpoint"`
	APIKey             string `yaml:"apiKey"`
	AssistantID        string `yaml:"assistantId"`
	Instructions       string `yaml:"instructions"`
	RunTimeoutSeconds  int    `yaml:"runTimeoutSeconds"`
	PollIntervalMillis int    `yaml:"pollIntervalMillis"`
}

// RunTimeout resolves the wall-clock bound for one assistant run.
func (a AssistantConfig) RunTimeout() time.Duration {
	if a.RunTimeoutSeconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(a.RunTimeoutSeconds) * time.Second
}

// PollInterval resolves the fixed run-status polling interval.
func (a AssistantConfig) PollInterval() time.Duration {
	if a.PollIntervalMillis <= 0 {
		return time.Second
	}
	return time.Duration(a.PollIntervalMillis) * time.Millisecond
}

// NewsConfig describes the news-search boundary. An empty APIKey disables
// news search entirely; that is a valid state, not an error.
type NewsConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"apiKey"`
	Count     int    `yaml:"count"`
	Freshness string `yaml:"freshness"`
	Market    string `yaml:"market"`
}

// ResearchConfig bounds the gathering stage.
type ResearchConfig struct {
	Enabled          *bool `yaml:"enabled"`
	MaxSources       int   `yaml:"maxSources"`
	MaxDocumentChars int   `yaml:"maxDocumentChars"`
	ExcerptChars     int   `yaml:"excerptChars"`
}

// ResearchEnabled reports whether the gathering stage runs at all. When off,
// questions go to the assistant without a research bundle.
func (r ResearchConfig) ResearchEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// CompetitorConfig describes one tracked vendor from the config file.
type CompetitorConfig struct {
	Key     string   `yaml:"key"`
	Domains []string `yaml:"domains"`
}

// Load reads .env, YAML configuration (if present), and applies environment
// overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate enforces the fatal-startup credentials. The news key is not
// checked here: its absence only disables news search.
func (c Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is required (set %s)", discordTokenEnv)
	}
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant api key is required (set %s)", openAIKeyEnv)
	}
	if c.Assistant.AssistantID == "" {
		return fmt.Errorf("assistant id is required (set %s)", assistantIDEnv)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(discordTokenEnv); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv(guildIDEnv); v != "" {
		c.Discord.GuildID = v
	}
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.Assistant.APIKey = v
	}
	if v := os.Getenv(assistantIDEnv); v != "" {
		c.Assistant.AssistantID = v
	}
	if v := os.Getenv(bingKeyEnv); v != "" {
		c.News.APIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Discord.Token != "" {
		base.Discord.Token = override.Discord.Token
	}
	if override.Discord.GuildID != "" {
		base.Discord.GuildID = override.Discord.GuildID
	}
	if override.Discord.Prefix != "" {
		base.Discord.Prefix = override.Discord.Prefix
	}

	if override.Assistant.Endpoint != "" {
		base.Assistant.Endpoint = override.Assistant.Endpoint
	}
	if override.Assistant.APIKey != "" {
		base.Assistant.APIKey = override.Assistant.APIKey
	}
	if override.Assistant.AssistantID != "" {
		base.Assistant.AssistantID = override.Assistant.AssistantID
	}
	if override.Assistant.Instructions != "" {
		base.Assistant.Instructions = override.Assistant.Instructions
	}
	if override.Assistant.RunTimeoutSeconds > 0 {
		base.Assistant.RunTimeoutSeconds = override.Assistant.RunTimeoutSeconds
	}
	if override.Assistant.PollIntervalMillis > 0 {
		base.Assistant.PollIntervalMillis = override.Assistant.PollIntervalMillis
	}

	if override.News.Endpoint != "" {
		base.News.Endpoint = override.News.Endpoint
	}
	if override.News.APIKey != "" {
		base.News.APIKey = override.News.APIKey
	}
	if override.News.Count > 0 {
		base.News.Count = override.News.Count
	}
	if override.News.Freshness != "" {
		base.News.Freshness = override.News.Freshness
	}
	if override.News.Market != "" {
		base.News.Market = override.News.Market
	}

	if override.Research.Enabled != nil {
		base.Research.Enabled = override.Research.Enabled
	}
	if override.Research.MaxSources > 0 {
		base.Research.MaxSources = override.Research.MaxSources
	}
	if override.Research.MaxDocumentChars > 0 {
		base.Research.MaxDocumentChars = override.Research.MaxDocumentChars
	}
	if override.Research.ExcerptChars > 0 {
		base.Research.ExcerptChars = override.Research.ExcerptChars
	}

	if len(override.Competitors) > 0 {
		base.Competitors = override.Competitors
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Discord: DiscordConfig{Prefix: "!ask"},
		Assistant: AssistantConfig{
			Endpoint:           "https://api.openai.com/v1",
			Instructions:       defaultInstructions,
			RunTimeoutSeconds:  90,
			PollIntervalMillis: 1000,
		},
		News: NewsConfig{
			Endpoint:  "https://api.bing.microsoft.com/v7.0/news/search",
			Count:     8,
			Freshness: "Week",
			Market:    "en-US",
		},
		Research: ResearchConfig{
			MaxSources:       15,
			MaxDocumentChars: 20000,
			ExcerptChars:     3000,
		},
	}
}

const defaultInstructions = "You are a Competitive Intelligence assistant for Red Hat OpenShift Virtualization.\n" +
	"Use ONLY the provided 'Research Documents' to answer. If details are missing, say so.\n" +
	"Output format:\n" +
	"1) Executive Summary (3-5 bullets)\n" +
	"2) Key Insights (per competitor, concise bullets)\n" +
	"3) Risks & Opportunities\n" +
	"4) Sources (list raw URLs used)\n" +
	"Rules: Be factual and vendor-neutral. No speculation without evidence. Always include sources."
