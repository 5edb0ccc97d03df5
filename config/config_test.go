package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "discord.bot_token", envKey("APP_DISCORD_BOT_TOKEN"))
	assert.Equal(t, "image.api_key", envKey("APP_IMAGE_API_KEY"))
	assert.Equal(t, "log.level", envKey("APP_LOG_LEVEL"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_DISCORD_BOT_TOKEN", "token")
	t.Setenv("APP_DISCORD_APP_ID", "123")

	cfg, err := load([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Discord.BotToken)
	assert.Equal(t, "123", cfg.Discord.AppID)
	assert.Equal(t, "#5865F2", cfg.Discord.SuccessColor)
	assert.Equal(t, "#FF0000", cfg.Discord.ErrorColor)
	assert.Equal(t, "https://llama-ai-khaki.vercel.app/api/llama/chat", cfg.Llama.URL)
	assert.Equal(t, "http://67.220.85.146:6207/image", cfg.Image.URL)
	assert.Empty(t, cfg.Image.APIKey)
	assert.Equal(t, "./dbfiles", cfg.Database.Directory)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "pretty", cfg.Log.Format)
	assert.False(t, cfg.Log.UTC)
	assert.Equal(t, "0 */5 * * * *", cfg.Schedules.Presence)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
discord:
  app_id: "file-app"
  bot_token: "file-token"
  feedback_channel_id: "relay"
  error_color: "#123456"
image:
  api_key: "file-key"
log:
  level: info
  utc: true
`)
	t.Setenv("APP_DISCORD_BOT_TOKEN", "env-token")
	t.Setenv("APP_IMAGE_API_KEY", "env-key")

	cfg, err := load([]string{filepath.Join(t.TempDir(), "missing.yaml"), path})
	require.NoError(t, err)

	assert.Equal(t, "file-app", cfg.Discord.AppID)
	assert.Equal(t, "env-token", cfg.Discord.BotToken)
	assert.Equal(t, "relay", cfg.Discord.FeedbackChannelID)
	assert.Equal(t, "#123456", cfg.Discord.ErrorColor)
	assert.Equal(t, "env-key", cfg.Image.APIKey)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.UTC)
	assert.Equal(t, "#5865F2", cfg.Discord.SuccessColor)
}

func TestLoadFirstFileWins(t *testing.T) {
	first := writeConfig(t, "discord:\n  app_id: first\n  bot_token: t\n")
	second := writeConfig(t, "discord:\n  app_id: second\n  bot_token: t\n")

	cfg, err := load([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Discord.AppID)
}

func TestLoadRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no token", body: "discord:\n  app_id: \"123\"\n"},
		{name: "no app id", body: "discord:\n  bot_token: token\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load([]string{writeConfig(t, tt.body)})
			assert.Error(t, err)
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	_, err := load([]string{writeConfig(t, "discord: [unclosed")})
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)

	assert.Empty(t, cfg.Discord.BotToken)
	assert.Equal(t, "0 0 9 * * *", cfg.Schedules.Report)
	assert.Equal(t, "https://discord.gg/Zg2XkS5hq9", cfg.Discord.SupportURL)
	assert.Error(t, cfg.validate())
}
