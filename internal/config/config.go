// Package config provides configuration management for mytv using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort         = 3000
	defaultServerTimeout      = 30 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultPlaylistURL        = "https://raw.githubusercontent.com/Jash-k/MyTVStremioAddon/refs/heads/main/starshare.m3u"
	defaultPlaylistTimeout    = 15 * time.Second
	defaultCatalogTTL         = 30 * time.Minute
	defaultMaxChannels        = 300
	defaultStreamTimeout      = 15 * time.Second
	defaultStreamUserAgent    = "Mozilla/5.0 (SMART-TV; Linux; Tizen 5.0) AppleWebKit/537.36"
	defaultManifestCacheTTL   = 5 * time.Second
	defaultMaxManifestEntries = 200
	defaultTargetDuration     = 6
	defaultLogMaxSizeMB       = 50
	defaultLogMaxBackups      = 3
	defaultLogMaxAgeDays      = 7
)

// CronParser parses scheduler expressions: five standard fields or a
// descriptor such as "@every 25m" or "@hourly".
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Playlist  PlaylistConfig  `mapstructure:"playlist" yaml:"playlist"`
	Stream    StreamConfig    `mapstructure:"stream" yaml:"stream"`
	Addon     AddonConfig     `mapstructure:"addon" yaml:"addon"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	// PublicURL is the externally reachable base URL used when building proxy
	// links. When empty the request's own scheme and host are used.
	PublicURL       string        `mapstructure:"public_url" yaml:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source"`
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
	// File enables a rotating log file in addition to stderr.
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// PlaylistConfig holds the upstream channel playlist configuration.
type PlaylistConfig struct {
	URL         string        `mapstructure:"url" yaml:"url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	MaxChannels int           `mapstructure:"max_channels" yaml:"max_channels"`
}

// StreamConfig holds origin stream and manifest rewriting configuration.
type StreamConfig struct {
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`
	Referer            string        `mapstructure:"referer" yaml:"referer"`
	ManifestCacheTTL   time.Duration `mapstructure:"manifest_cache_ttl" yaml:"manifest_cache_ttl"`
	MaxManifestEntries int           `mapstructure:"max_manifest_entries" yaml:"max_manifest_entries"`
	TargetDuration     int           `mapstructure:"target_duration" yaml:"target_duration"` // seconds
	HLSProxy           bool          `mapstructure:"hls_proxy" yaml:"hls_proxy"`
}

// AddonConfig holds the addon manifest identity.
type AddonConfig struct {
	ID          string `mapstructure:"id" yaml:"id"`
	Name        string `mapstructure:"name" yaml:"name"`
	IDPrefix    string `mapstructure:"id_prefix" yaml:"id_prefix"`
	EnableLogos bool   `mapstructure:"enable_logos" yaml:"enable_logos"`
}

// SchedulerConfig holds background job schedules. Empty expressions disable a job.
type SchedulerConfig struct {
	RefreshCron   string `mapstructure:"refresh_cron" yaml:"refresh_cron"`
	KeepAliveCron string `mapstructure:"keep_alive_cron" yaml:"keep_alive_cron"`
	KeepAliveURL  string `mapstructure:"keep_alive_url" yaml:"keep_alive_url"`
}

// legacyEnv maps config keys to the bare environment names older deployments
// used, in lookup order.
var legacyEnv = map[string][]string{
	"server.port":                 {"PORT"},
	"server.public_url":           {"RENDER_EXTERNAL_URL", "BASE_URL"},
	"playlist.url":                {"PLAYLIST_URL"},
	"playlist.max_channels":       {"MAX_CHANNELS"},
	"stream.max_manifest_entries": {"MAX_CACHE_ENTRIES"},
	"addon.enable_logos":          {"ENABLE_LOGOS"},
	"scheduler.keep_alive_url":    {"KEEP_ALIVE_URL"},
}

// legacyMillisEnv maps bare environment names holding millisecond integers
// to the duration keys they set.
var legacyMillisEnv = []struct {
	name string
	keys []string
}{
	{"REQUEST_TIMEOUT", []string{"playlist.timeout", "stream.timeout"}},
	{"CHANNEL_CACHE_TTL", []string{"playlist.cache_ttl"}},
	{"STREAM_CACHE_TTL", []string{"stream.manifest_cache_ttl"}},
	{"KEEP_ALIVE_INTERVAL", []string{"scheduler.keep_alive_cron"}},
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with MYTV_ and use underscores for nesting.
// Example: MYTV_SERVER_PORT=3000.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mytv")
		v.AddConfigPath("$HOME/.mytv")
	}

	v.SetEnvPrefix("MYTV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := applyLegacyMillisEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv binds each legacy key to its prefixed name first and its bare
// names after, so MYTV_* wins when both are set.
func bindLegacyEnv(v *viper.Viper) error {
	for key, bare := range legacyEnv {
		names := append([]string{prefixedEnv(key)}, bare...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	return nil
}

// applyLegacyMillisEnv converts bare millisecond variables into durations.
// A key whose MYTV_* variable is set keeps that value. KEEP_ALIVE_INTERVAL
// becomes an "@every" schedule.
func applyLegacyMillisEnv(v *viper.Viper) error {
	for _, legacy := range legacyMillisEnv {
		raw := strings.TrimSpace(os.Getenv(legacy.name))
		if raw == "" {
			continue
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			return fmt.Errorf("%s must be a positive number of milliseconds, got %q", legacy.name, raw)
		}
		d := time.Duration(ms) * time.Millisecond
		for _, key := range legacy.keys {
			if _, ok := os.LookupEnv(prefixedEnv(key)); ok {
				continue
			}
			if key == "scheduler.keep_alive_cron" {
				v.Set(key, "@every "+d.String())
				continue
			}
			v.Set(key, d)
		}
	}
	return nil
}

func prefixedEnv(key string) string {
	return "MYTV_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	// Passthrough proxying streams indefinitely, so no write deadline.
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", defaultLogMaxSizeMB)
	v.SetDefault("logging.max_backups", defaultLogMaxBackups)
	v.SetDefault("logging.max_age_days", defaultLogMaxAgeDays)

	v.SetDefault("playlist.url", defaultPlaylistURL)
	v.SetDefault("playlist.timeout", defaultPlaylistTimeout)
	v.SetDefault("playlist.cache_ttl", defaultCatalogTTL)
	v.SetDefault("playlist.max_channels", defaultMaxChannels)

	v.SetDefault("stream.timeout", defaultStreamTimeout)
	v.SetDefault("stream.user_agent", defaultStreamUserAgent)
	v.SetDefault("stream.referer", "")
	v.SetDefault("stream.manifest_cache_ttl", defaultManifestCacheTTL)
	v.SetDefault("stream.max_manifest_entries", defaultMaxManifestEntries)
	v.SetDefault("stream.target_duration", defaultTargetDuration)
	v.SetDefault("stream.hls_proxy", true)

	v.SetDefault("addon.id", "org.freelivtv.tamil")
	v.SetDefault("addon.name", "FREE LIV TV")
	v.SetDefault("addon.id_prefix", "tamil:")
	v.SetDefault("addon.enable_logos", true)

	v.SetDefault("scheduler.refresh_cron", "@every 25m")
	v.SetDefault("scheduler.keep_alive_cron", "")
	v.SetDefault("scheduler.keep_alive_url", "")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}
	if c.Server.PublicURL != "" {
		if u, err := url.Parse(c.Server.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.public_url must be an absolute URL")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Playlist.URL == "" {
		return fmt.Errorf("playlist.url is required")
	}
	if c.Playlist.Timeout <= 0 {
		return fmt.Errorf("playlist.timeout must be positive")
	}
	if c.Playlist.CacheTTL <= 0 {
		return fmt.Errorf("playlist.cache_ttl must be positive")
	}
	if c.Playlist.MaxChannels < 1 {
		return fmt.Errorf("playlist.max_channels must be at least 1")
	}

	if c.Stream.Timeout <= 0 {
		return fmt.Errorf("stream.timeout must be positive")
	}
	if c.Stream.ManifestCacheTTL <= 0 {
		return fmt.Errorf("stream.manifest_cache_ttl must be positive")
	}
	if c.Stream.MaxManifestEntries < 1 {
		return fmt.Errorf("stream.max_manifest_entries must be at least 1")
	}
	if c.Stream.TargetDuration < 1 {
		return fmt.Errorf("stream.target_duration must be at least 1")
	}

	if c.Addon.ID == "" {
		return fmt.Errorf("addon.id is required")
	}
	if c.Addon.IDPrefix == "" {
		return fmt.Errorf("addon.id_prefix is required")
	}

	if err := ValidateCron(c.Scheduler.RefreshCron); err != nil {
		return fmt.Errorf("scheduler.refresh_cron: %w", err)
	}
	if err := ValidateCron(c.Scheduler.KeepAliveCron); err != nil {
		return fmt.Errorf("scheduler.keep_alive_cron: %w", err)
	}
	if c.Scheduler.KeepAliveCron != "" && c.Scheduler.KeepAliveURL == "" {
		return fmt.Errorf("scheduler.keep_alive_url is required when scheduler.keep_alive_cron is set")
	}

	return nil
}

// ValidateCron checks a scheduler expression. An empty expression is valid
// and disables its job.
func ValidateCron(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := CronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
