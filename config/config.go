package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Discord struct {
		AppID    string `koanf:"app_id" yaml:"app_id"`
		BotToken string `koanf:"bot_token" yaml:"bot_token"`
		// GuildID registers commands to a single guild, for development.
		GuildID           string `koanf:"guild_id" yaml:"guild_id"`
		FeedbackChannelID string `koanf:"feedback_channel_id" yaml:"feedback_channel_id"`
		SuccessColor      string `koanf:"success_color" yaml:"success_color"`
		ErrorColor        string `koanf:"error_color" yaml:"error_color"`
		Support           string `koanf:"support" yaml:"support"`
		SupportURL        string `koanf:"support_url" yaml:"support_url"`
	} `koanf:"discord" yaml:"discord"`

	Llama struct {
		URL string `koanf:"url" yaml:"url"`
	} `koanf:"llama" yaml:"llama"`

	Image struct {
		URL    string `koanf:"url" yaml:"url"`
		APIKey string `koanf:"api_key" yaml:"api_key"`
	} `koanf:"image" yaml:"image"`

	Database struct {
		// Directory holds the history database. Empty disables history.
		Directory string `koanf:"directory" yaml:"directory"`
	} `koanf:"database" yaml:"database"`

	Log struct {
		Level  string `koanf:"level" yaml:"level"`
		Format string `koanf:"format" yaml:"format"`
		UTC    bool   `koanf:"utc" yaml:"utc"`
	} `koanf:"log" yaml:"log"`

	Schedules struct {
		Presence string `koanf:"presence" yaml:"presence"`
		Report   string `koanf:"report" yaml:"report"`
	} `koanf:"schedules" yaml:"schedules"`
}

// Global singleton config instance
var (
	cfg  *AppConfig
	once sync.Once
)

// defaultLocations are searched in order for a config file.
var defaultLocations = []string{
	"/etc/app/config.yaml",            // Standard system location
	"/config/config.yaml",             // Docker mounted volume location
	filepath.Join(".", "config.yaml"), // Local file in current directory
}

// Get returns the global AppConfig instance
func Get() *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = load(defaultLocations)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
	})
	return cfg
}

// envKey maps APP_DISCORD_BOT_TOKEN to discord.bot_token. Only the first
// underscore after the prefix separates the section from the key.
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), "app_")
	return strings.Replace(s, "_", ".", 1)
}

// defaults are the values used when neither a file nor the environment
// sets a key. bot_token and app_id have none.
var defaults = map[string]interface{}{
	"discord.success_color": "#5865F2",
	"discord.error_color":   "#FF0000",
	"discord.support":       "Need help? Join our support server.",
	"discord.support_url":   "https://discord.gg/Zg2XkS5hq9",
	"llama.url":             "https://llama-ai-khaki.vercel.app/api/llama/chat",
	"image.url":             "http://67.220.85.146:6207/image",
	"database.directory":    "./dbfiles",
	"log.level":             "debug",
	"log.format":            "pretty",
	"schedules.presence":    "0 */5 * * * *",
	"schedules.report":      "0 0 9 * * *",
}

// Defaults returns the configuration with only the defaults applied.
func Defaults() (*AppConfig, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*AppConfig, error) {
	var cfg AppConfig
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// load layers defaults, the first config file found, then APP_ environment
// variables, and validates the result.
func load(configLocations []string) (*AppConfig, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	configLoaded := false
	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err != nil {
			continue
		}
		slog.Info("Loading configuration file", "path", loc)
		if err := k.Load(file.Provider(loc), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", loc, err)
		}
		configLoaded = true
		break
	}
	if !configLoaded {
		slog.Warn("No config file found in any of the expected locations",
			"searched_locations", configLocations)
	}

	if err := k.Load(env.Provider("APP_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}

	// Secrets are only reported as present or absent.
	slog.Debug("Configuration loaded",
		"database_directory", cfg.Database.Directory,
		"discord_app_id", cfg.Discord.AppID,
		"discord_guild_id", cfg.Discord.GuildID,
		"bot_token_present", cfg.Discord.BotToken != "",
		"feedback_channel_present", cfg.Discord.FeedbackChannelID != "",
		"image_api_key_present", cfg.Image.APIKey != "")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	if c.Discord.AppID == "" {
		return fmt.Errorf("discord.app_id is required")
	}
	return nil
}
