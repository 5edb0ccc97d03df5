package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brensch/llamabot/commands"
	"github.com/brensch/llamabot/config"
	"github.com/brensch/llamabot/db"
	"github.com/brensch/llamabot/discord"
	"github.com/brensch/llamabot/imagegen"
	"github.com/brensch/llamabot/llama"
	"github.com/brensch/llamabot/log"
	"github.com/brensch/llamabot/render"
	"github.com/brensch/llamabot/routing"
	"github.com/lmittmann/tint"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Log startup message.
	slog.Info("Discord Bot Starting")

	// Load configuration
	cfg := config.Get()

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Warn("falling back to info logging", tint.Err(err))
	}
	handler, err := log.NewHandler(cfg.Log.Format, level, cfg.Log.UTC)
	if err != nil {
		slog.Error("failed to create log handler", tint.Err(err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("Configuration loaded successfully")

	opts := commands.Options{
		Store: routing.NewStore(),
		Renderer: render.Renderer{
			SuccessColor: render.ParseColor(cfg.Discord.SuccessColor, render.DefaultSuccessColor),
			ErrorColor:   render.ParseColor(cfg.Discord.ErrorColor, render.DefaultErrorColor),
			InviteURL:    render.InviteURL(cfg.Discord.AppID),
			SupportURL:   cfg.Discord.SupportURL,
		},
		AppID:             cfg.Discord.AppID,
		FeedbackChannelID: cfg.Discord.FeedbackChannelID,
		Support:           cfg.Discord.Support,
	}

	// History is optional; the bot runs without it.
	var dbClient *db.Client
	var recorder imagegen.Recorder
	if dir := cfg.Database.Directory; dir != "" {
		dbClient, err = db.NewClient(dir)
		if err != nil {
			slog.Error("failed to create db client", tint.Err(err))
			os.Exit(1)
		}
		if err := dbClient.Start(ctx); err != nil {
			slog.Error("failed to start db client", tint.Err(err))
			os.Exit(1)
		}
		opts.History = dbClient
		recorder = dbClient
	}

	generator := imagegen.NewClient(cfg.Image.URL, cfg.Image.APIKey, recorder)
	opts.Generator = generator
	handlers := commands.New(opts)

	router := routing.NewRouter(opts.Store, llama.NewClient(cfg.Llama.URL), generator, opts.Renderer)

	// Configure and start the bot using config values
	discordCfg := discord.BotConfig{
		AppID:      cfg.Discord.AppID,
		BotToken:   cfg.Discord.BotToken,
		GuildID:    cfg.Discord.GuildID,
		ErrorColor: opts.Renderer.ErrorColor,
		LogLevel:   level,
	}

	slog.Info("Initializing bot", "app_id", discordCfg.AppID, "guild_id", discordCfg.GuildID)

	bot, err := discord.NewBot(
		discordCfg,
		handlers.Commands(),
		handlers.Schedules(cfg.Schedules.Presence, cfg.Schedules.Report),
		commands.RouteMessages(router),
	)
	if err != nil {
		slog.Error("Failed to create bot", tint.Err(err))
		os.Exit(1)
	}

	// Log successful startup.
	slog.Info("Bot is now running")

	// Wait for an interrupt signal to gracefully shut down.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// Shut down the bot.
	slog.Info("Shutting down bot...")
	if err := bot.Close(); err != nil {
		slog.Error("Error during shutdown", tint.Err(err))
	}

	if dbClient != nil {
		if err := dbClient.Stop(); err != nil {
			slog.Error("failed to stop db client", tint.Err(err))
		}
	}
}
