// Package commands defines the bot's slash commands, schedules, and the
// hook that feeds channel messages to the router.
package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/brensch/llamabot/db"
	"github.com/brensch/llamabot/discord"
	"github.com/brensch/llamabot/render"
	"github.com/brensch/llamabot/routing"
	"github.com/bwmarrin/discordgo"
)

// History archives feedback and reports on recent activity.
type History interface {
	RecordFeedback(ctx context.Context, f db.Feedback) error
	GenerationsSince(ctx context.Context, since time.Time) (db.GenerationStats, error)
	FeedbackSince(ctx context.Context, since time.Time) (int64, error)
}

// Options configures Handlers.
type Options struct {
	Store     *routing.Store
	Generator routing.Generator
	Renderer  render.Renderer
	// History is optional.
	History History

	AppID             string
	FeedbackChannelID string
	Support           string
}

// Handlers implements every subcommand.
type Handlers struct {
	store     *routing.Store
	routing   *routing.Commands
	guard     routing.Guard
	generator routing.Generator
	render    render.Renderer
	history   History

	appID             string
	feedbackChannelID string
	support           string
	started           time.Time
	now               func() time.Time
}

// New creates Handlers. Uptime is measured from this call.
func New(opts Options) *Handlers {
	return &Handlers{
		store:             opts.Store,
		routing:           routing.NewCommands(opts.Store),
		generator:         opts.Generator,
		render:            opts.Renderer,
		history:           opts.History,
		appID:             opts.AppID,
		feedbackChannelID: opts.FeedbackChannelID,
		support:           opts.Support,
		started:           time.Now(),
		now:               time.Now,
	}
}

// Commands returns the command groups to register.
func (h *Handlers) Commands() []*discord.BotCommand {
	return []*discord.BotCommand{
		h.channelCommand(),
		h.imageCommand(),
		h.botCommand(),
	}
}

// outcomeResponse turns a routing outcome into a reply.
func (h *Handlers) outcomeResponse(inv *discord.Invocation, out routing.Outcome) *discordgo.InteractionResponseData {
	if out.Status == routing.OutcomePermissionDenied {
		return &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{h.render.PermissionDenied(inv.User())},
			Flags:  discordgo.MessageFlagsEphemeral,
		}
	}
	data := &discordgo.InteractionResponseData{Content: out.Message}
	if out.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func ephemeral(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
}

func embedResponse(embed *discordgo.MessageEmbed) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
}

// Router is the part of *routing.Router the message hook needs.
type Router interface {
	Route(ctx context.Context, msg routing.Message, out routing.Outbox) (routing.Kind, bool)
}

// RouteMessages adapts router to the bot's message hook.
func RouteMessages(router Router) discord.MessageHandler {
	return func(ctx context.Context, m *discordgo.MessageCreate, thread *discord.MessageThread) {
		msg := routing.Message{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			Content:   m.Content,
			Author:    m.Author,
		}
		if kind, ok := router.Route(ctx, msg, thread); ok {
			slog.Debug("message routed", "kind", kind, "guild", m.GuildID, "channel", m.ChannelID)
		}
	}
}
