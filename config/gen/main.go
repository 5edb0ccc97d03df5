// Command gen writes config.example.yaml, a config file holding every key
// with its default value.
package main

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/brensch/llamabot/config"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"
)

const (
	outPath = "./config.example.yaml"
	header  = "# Copy to config.yaml. discord.app_id and discord.bot_token are required.\n" +
		"# Any key can be overridden from the environment, e.g. APP_DISCORD_BOT_TOKEN.\n"
)

func main() {
	slog.Info("generating example config", "path", outPath)

	conf, err := config.Defaults()
	if err != nil {
		slog.Error("failed to load defaults", tint.Err(err))
		os.Exit(1)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(conf); err != nil {
		slog.Error("failed to marshal example config", tint.Err(err))
		os.Exit(1)
	}
	if err := enc.Close(); err != nil {
		slog.Error("failed to flush example config", tint.Err(err))
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		slog.Error("failed to write example config", tint.Err(err))
		os.Exit(1)
	}
}
