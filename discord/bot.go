package discord

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

const genericErrorMessage = "An error occurred while processing your command."

// MessageHandler is called for every channel message not written by a bot.
type MessageHandler func(ctx context.Context, m *discordgo.MessageCreate, thread *MessageThread)

// Bot encapsulates the discordgo session, configuration, registered commands, and schedules.
type Bot struct {
	dg              *discordgo.Session
	session         Session
	config          BotConfig
	commands        []*BotCommand
	schedules       []BotScheduleI
	scheduleManager *scheduleManager
	onMessage       MessageHandler
	started         time.Time
}

// BotConfig contains configuration for the bot.
type BotConfig struct {
	AppID    string
	BotToken string
	// GuildID registers commands to one guild instead of globally.
	GuildID    string
	ErrorColor int
	LogLevel   slog.Level
}

// NewBot connects to Discord, registers the commands, and starts the
// schedules. onMessage may be nil.
func NewBot(cfg BotConfig, commands []*BotCommand, schedules []BotScheduleI, onMessage MessageHandler) (*Bot, error) {
	// Create a new Discord session using the provided bot token.
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.LogLevel = discordgoLogLevel(cfg.LogLevel)

	// Set necessary intents.
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	bot := newBot(dg, cfg, commands, schedules, onMessage)
	bot.dg = dg

	// Register event handlers.
	dg.AddHandler(bot.onReady)
	dg.AddHandler(bot.onMessageCreate)
	dg.AddHandler(bot.onInteractionCreate)

	// Open the websocket connection.
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, err
	}

	// Initialize and start the schedule manager if there are schedules
	if len(schedules) > 0 {
		bot.scheduleManager = newScheduleManager(bot, schedules)
		if err := bot.scheduleManager.start(); err != nil {
			slog.Error("failed to start schedule manager", tint.Err(err))
			dg.Close()
			return nil, err
		}
	}

	return bot, nil
}

func newBot(session Session, cfg BotConfig, commands []*BotCommand, schedules []BotScheduleI, onMessage MessageHandler) *Bot {
	return &Bot{
		session:   session,
		config:    cfg,
		commands:  commands,
		schedules: schedules,
		onMessage: onMessage,
		started:   time.Now(),
	}
}

func discordgoLogLevel(lvl slog.Level) int {
	switch {
	case lvl <= slog.LevelDebug:
		return discordgo.LogDebug
	case lvl <= slog.LevelInfo:
		return discordgo.LogInformational
	case lvl <= slog.LevelWarn:
		return discordgo.LogWarning
	default:
		return discordgo.LogError
	}
}

// registerCommands replaces the application's commands with the configured set.
func (b *Bot) registerCommands() error {
	appCommands := make([]*discordgo.ApplicationCommand, 0, len(b.commands))
	for _, cmd := range b.commands {
		appCmd, err := cmd.applicationCommand()
		if err != nil {
			slog.Error("failed to generate command", "command", cmd.Name, tint.Err(err))
			return err
		}
		slog.Debug("initialising command", "name", cmd.Name, "subcommands", len(cmd.Subcommands))
		appCommands = append(appCommands, appCmd)
	}

	slog.Info("Started refreshing application (/) commands.", "guild", b.config.GuildID)
	_, err := b.session.ApplicationCommandBulkOverwrite(b.config.AppID, b.config.GuildID, appCommands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	slog.Info("Successfully reloaded application (/) commands.", "count", len(appCommands))
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("logged in", "user", r.User.String(), "guilds", len(r.Guilds))
}

// onMessageCreate passes messages from people to the message handler.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.handleMessage(context.Background(), m)
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	slog.Debug("message received",
		"author", m.Author.Username,
		"author_id", m.Author.ID,
		"guild_id", m.GuildID,
		"channel_id", m.ChannelID,
		"attachments", len(m.Attachments))

	if b.onMessage == nil {
		return
	}

	defer func() {
		if rc := recover(); rc != nil {
			slog.Error("recovered from panic", "panic_arg", rc, "stack_trace", string(debug.Stack()))
		}
	}()
	b.onMessage(ctx, m, &MessageThread{session: b.session, message: m.Message})
}

// onInteractionCreate routes interactions to the matching command and subcommand.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(context.Background(), i)
}

func (b *Bot) state() *discordgo.State {
	if b.dg == nil {
		return nil
	}
	return b.dg.State
}

func (b *Bot) dispatch(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	inv := NewInvocation(ctx, b.session, b.state(), i.Interaction)
	defer func() {
		if rc := recover(); rc != nil {
			slog.Error("recovered from panic", "panic_arg", rc, "stack_trace", string(debug.Stack()))
			b.fallback(inv)
		}
	}()

	cmdData := i.ApplicationCommandData()
	slog.Debug("received interaction", "cmd", cmdData.Name, "guild", i.GuildID, "channel", i.ChannelID)

	// Commands only work in servers.
	if i.GuildID == "" {
		b.replyError(inv, "❌ Server Only", "Commands only work in servers.")
		return
	}

	cmd := b.command(cmdData.Name)
	if cmd == nil {
		slog.Warn("received unknown command", "command", cmdData.Name)
		b.replyError(inv, "Error", "Unknown command: "+cmdData.Name)
		return
	}

	if len(cmdData.Options) == 0 || cmdData.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		slog.Warn("command invoked without subcommand", "command", cmd.Name)
		b.replyError(inv, "Error", "Missing subcommand for "+cmd.Name)
		return
	}
	sub := cmdData.Options[0]
	fn := cmd.subcommand(sub.Name)
	if fn == nil {
		slog.Warn("received unknown subcommand", "command", cmd.Name, "subcommand", sub.Name)
		b.replyError(inv, "Error", fmt.Sprintf("Unknown command: %s %s", cmd.Name, sub.Name))
		return
	}

	// Execute the function's handler using the subcommand's options.
	respData, err := fn.HandleInteraction(inv, sub.Options)
	if err != nil {
		slog.Error("failed to execute command", "command", cmd.Name, "subcommand", fn.GetName(), tint.Err(err))
		b.fallback(inv)
		return
	}
	if respData == nil {
		return
	}

	if inv.State() == Unanswered {
		err = inv.Reply(respData)
	} else {
		err = inv.Edit(respData)
	}
	if err != nil {
		slog.Error("failed to respond to command", "command", cmd.Name, "subcommand", fn.GetName(), tint.Err(err))
	}
}

func (b *Bot) command(name string) *BotCommand {
	for _, c := range b.commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (b *Bot) replyError(inv *Invocation, title, description string) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       b.config.ErrorColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if u := inv.User(); u != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Requested by: " + u.Username}
	}
	err := inv.Reply(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		slog.Error("failed to send error reply", tint.Err(err))
	}
}

// fallback tells the user something went wrong, unless a reply is already
// in flight or sent.
func (b *Bot) fallback(inv *Invocation) {
	if state := inv.State(); state != Unanswered {
		slog.Debug("skipping fallback reply", "state", state)
		return
	}
	err := inv.Reply(&discordgo.InteractionResponseData{
		Content: genericErrorMessage,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		slog.Error("Error sending error reply", tint.Err(err))
	}
}

// Uptime reports how long the bot has been running.
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.started)
}

// UpdateStatus sets the bot's custom status.
func (b *Bot) UpdateStatus(status string) error {
	return b.session.UpdateCustomStatus(status)
}

// Close gracefully closes the Discord session and stops the schedule manager.
func (b *Bot) Close() error {
	slog.Info("shutting down bot")

	// Stop the schedule manager if it was initialized
	if b.scheduleManager != nil {
		b.scheduleManager.stop()
	}

	if b.dg == nil {
		return nil
	}
	return b.dg.Close()
}
