package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Trigger              string        `mapstructure:"trigger"`
	AnnounceDelayMs      int64         `mapstructure:"announce_delay_ms"`
	ReplyDelayMs         int64         `mapstructure:"reply_delay_ms"`
	DefaultPollMinutes   int64         `mapstructure:"default_poll_minutes"`
	AnnounceDelay        time.Duration `mapstructure:"-"`
	ReplyDelay           time.Duration `mapstructure:"-"`
	DefaultPollInterval  time.Duration `mapstructure:"-"`
	ShutdownGraceSeconds int64         `mapstructure:"shutdown_grace_seconds"`
	ShutdownGrace        time.Duration `mapstructure:"-"`

	SourcesFile   string `mapstructure:"sources_file"`
	NotifiersFile string `mapstructure:"notifiers_file"`

	MarkerStore    string        `mapstructure:"marker_store"`
	MarkerDir      string        `mapstructure:"marker_dir"`
	MarkerDBPath   string        `mapstructure:"marker_db_path"`
	MarkerTTLHours int64         `mapstructure:"marker_ttl_hours"`
	MarkerTTL      time.Duration `mapstructure:"-"`

	IRCServer        string `mapstructure:"irc_server"`
	IRCNick          string `mapstructure:"irc_nick"`
	IRCChannel       string `mapstructure:"irc_channel"`
	IRCTLS           bool   `mapstructure:"irc_tls"`
	CertBundleFile   string `mapstructure:"cert_bundle_file"`
	ServerPassword   string `mapstructure:"server_password"`
	NickServPassword string `mapstructure:"nickserv_password"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "herald")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("trigger", "!herald")
	v.SetDefault("announce_delay_ms", 2000)
	v.SetDefault("reply_delay_ms", 1000)
	v.SetDefault("default_poll_minutes", 15)
	v.SetDefault("shutdown_grace_seconds", 5)
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("marker_store", "dir")
	v.SetDefault("marker_dir", "./data/markers")
	v.SetDefault("marker_db_path", "./data/markers.db")
	v.SetDefault("marker_ttl_hours", int64((30*24*time.Hour)/time.Hour))
	v.SetDefault("irc_server", "irc.libera.chat:6697")
	v.SetDefault("irc_nick", "herald")
	v.SetDefault("irc_channel", "#noc")
	v.SetDefault("irc_tls", true)
	v.SetDefault("cert_bundle_file", "")
	v.SetDefault("server_password", "")
	v.SetDefault("nickserv_password", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Trigger) == "" {
		return nil, fmt.Errorf("trigger must not be empty")
	}
	if cfg.AnnounceDelayMs < 0 || cfg.ReplyDelayMs < 0 {
		return nil, fmt.Errorf("flood delays must not be negative milliseconds")
	}
	if cfg.DefaultPollMinutes <= 0 {
		return nil, fmt.Errorf("invalid default_poll_minutes (must be positive minutes)")
	}
	if cfg.ShutdownGraceSeconds <= 0 {
		return nil, fmt.Errorf("invalid shutdown_grace_seconds (must be positive seconds)")
	}
	if cfg.MarkerTTLHours < 0 {
		return nil, fmt.Errorf("invalid marker_ttl_hours (use 0 to disable expiry)")
	}
	if strings.TrimSpace(cfg.IRCServer) == "" {
		return nil, fmt.Errorf("irc_server must not be empty")
	}
	if strings.TrimSpace(cfg.IRCNick) == "" {
		return nil, fmt.Errorf("irc_nick must not be empty")
	}
	if !strings.HasPrefix(cfg.IRCChannel, "#") {
		return nil, fmt.Errorf("irc_channel must start with #")
	}

	cfg.AnnounceDelay = time.Duration(cfg.AnnounceDelayMs) * time.Millisecond
	cfg.ReplyDelay = time.Duration(cfg.ReplyDelayMs) * time.Millisecond
	cfg.DefaultPollInterval = time.Duration(cfg.DefaultPollMinutes) * time.Minute
	cfg.ShutdownGrace = time.Duration(cfg.ShutdownGraceSeconds) * time.Second
	cfg.MarkerTTL = time.Duration(cfg.MarkerTTLHours) * time.Hour

	return &cfg, nil
}
