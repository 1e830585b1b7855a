// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const appName = "lyricpost"

// Config represents the application configuration.
type Config struct {
	Users    []UserConfig            `yaml:"users" validate:"required,min=1,dive"`
	Spotify  SpotifyConfig           `yaml:"spotify"`
	Genius   GeniusConfig            `yaml:"genius"`
	LastFm   LastFmConfig            `yaml:"lastfm"`
	Telegram TelegramConfig          `yaml:"telegram"`
	Odds     OddsConfig              `yaml:"odds"`
	Matching MatchingConfig          `yaml:"matching"`
	History  HistoryConfig           `yaml:"history"`
	Retry    RetryConfig             `yaml:"retry"`
	Post     PostConfig              `yaml:"post"`
	Links    []LinkConfig            `yaml:"links" validate:"dive"`
	Filters  map[string]FilterConfig `yaml:"filters"`
}

// UserConfig represents a listener whose plays are posted.
type UserConfig struct {
	Name           string `yaml:"name" validate:"required"`
	RefreshToken   string `yaml:"refresh_token" validate:"required"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
}

// GeniusConfig represents Genius API configuration.
type GeniusConfig struct {
	AccessToken   string   `yaml:"access_token" validate:"required"`
	ExcludedTerms []string `yaml:"excluded_terms" default:"[\"Songs That Reference Drugs\"]"`
}

// LastFmConfig represents Last.fm API configuration.
type LastFmConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// TelegramConfig represents Telegram bot configuration.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

// OddsConfig represents posting odds and excerpt limits.
type OddsConfig struct {
	ChanceToPost         int     `yaml:"chance_to_post" default:"120" validate:"gte=1"`
	ChanceToAddLine      int     `yaml:"chance_to_add_line" default:"4" validate:"gte=1"`
	ChanceToAddFirstLine int     `yaml:"chance_to_add_first_line" default:"6" validate:"gte=1"`
	PostLimit            int     `yaml:"post_limit" default:"280" validate:"gte=1"`
	ReplayReduceFactor   float64 `yaml:"replay_reduce_factor" default:"1.5" validate:"gt=0"`
	NoRetry              *bool   `yaml:"no_retry" default:"true"`
}

// MatchingConfig represents fuzzy matching thresholds.
type MatchingConfig struct {
	RequiredArtistScore float64 `yaml:"required_artist_score" default:"0.2" validate:"gte=0,lte=1"`
	RequiredSongScore   float64 `yaml:"required_song_score" default:"0.3" validate:"gte=0,lte=1"`
}

// HistoryConfig represents play history storage.
type HistoryConfig struct {
	Backend    string `yaml:"backend" default:"file" validate:"oneof=file redis sqlite"`
	Path       string `yaml:"path"`
	RedisURL   string `yaml:"redis_url" validate:"required_if=Backend redis"`
	MaxEntries int    `yaml:"max_entries" default:"300" validate:"gte=1"`
}

// RetryConfig represents retry behavior for remote calls.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" default:"3" validate:"gte=1,lte=10"`
	BaseDelayMs int `yaml:"base_delay_ms" default:"1000" validate:"gte=0,lte=60000"`
}

// PostConfig represents where excerpts are posted.
type PostConfig struct {
	Sink string `yaml:"sink" default:"telegram" validate:"oneof=telegram log"`
}

// LinkConfig represents a cross-reference link provider.
type LinkConfig struct {
	Type     string         `yaml:"type" validate:"required,oneof=lastfm apple spotify"`
	Name     string         `yaml:"name"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// DefaultFilter is enabled unless the filters section turns it off explicitly.
const DefaultFilter = "profanity_filter"

// SetDefaults enables the default filter when the config does not mention it.
// It is called by defaults.Set.
func (c *Config) SetDefaults() {
	if _, ok := c.Filters[DefaultFilter]; ok {
		return
	}
	if c.Filters == nil {
		c.Filters = make(map[string]FilterConfig)
	}
	c.Filters[DefaultFilter] = FilterConfig{Enabled: true}
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := cfg.setPathDefaults(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("GENIUS_ACCESS_TOKEN"); v != "" {
		c.Genius.AccessToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFm.APIKey = v
	}
	if v := os.Getenv("LASTFM_API_SECRET"); v != "" {
		c.LastFm.APISecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.History.RedisURL = v
	}
}

// setPathDefaults places the history file under the XDG data directory when unset.
func (c *Config) setPathDefaults() error {
	if c.History.Path != "" || c.History.Backend == "redis" {
		return nil
	}
	name := "previous_songs.json"
	if c.History.Backend == "sqlite" {
		name = "history.db"
	}
	p, err := xdg.DataFile(filepath.Join(appName, name))
	if err != nil {
		return errors.Wrap(err, "failed to resolve history path")
	}
	c.History.Path = p
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validatePostTargets(); err != nil {
		return err
	}

	return nil
}

// validatePostTargets checks that the configured sink has what it needs.
func (c *Config) validatePostTargets() error {
	if c.Post.Sink != "telegram" {
		return nil
	}
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when post.sink is telegram")
	}
	for _, u := range c.Users {
		if u.TelegramChatID == 0 {
			return errors.Newf("user %s: telegram_chat_id is required when post.sink is telegram", u.Name)
		}
	}
	return nil
}

// NoRetryEnabled reports whether re-rolling during the same play is suppressed.
func (c *Config) NoRetryEnabled() bool {
	return c.Odds.NoRetry == nil || *c.Odds.NoRetry
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// FindUser returns the user with the given name.
func (c *Config) FindUser(name string) (UserConfig, bool) {
	for _, u := range c.Users {
		if u.Name == name {
			return u, true
		}
	}
	return UserConfig{}, false
}
