package routing

import (
	"context"
	"log/slog"

	"github.com/brensch/llamabot/imagegen"
	"github.com/brensch/llamabot/render"
	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// Completer answers a chat prompt. It never fails; errors become text.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// Generator turns a prompt into an image.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*imagegen.Image, error)
}

// Outbox replies to the triggering message and edits those replies.
type Outbox interface {
	Reply(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (string, error)
	Edit(messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error
}

// Message is an inbound channel message. Messages from bots are filtered
// before they reach the Router.
type Message struct {
	GuildID   string
	ChannelID string
	Content   string
	Author    *discordgo.User
}

// Router sends messages in routed channels to the matching collaborator.
type Router struct {
	store     *Store
	completer Completer
	generator Generator
	render    render.Renderer
}

// NewRouter creates a Router.
func NewRouter(store *Store, completer Completer, generator Generator, r render.Renderer) *Router {
	return &Router{
		store:     store,
		completer: completer,
		generator: generator,
		render:    r,
	}
}

// Route handles msg and reports which kind handled it. AI routing wins
// when a channel is registered for both kinds.
func (r *Router) Route(ctx context.Context, msg Message, out Outbox) (Kind, bool) {
	if msg.GuildID == "" {
		return 0, false
	}

	if ch, ok := r.store.Get(msg.GuildID, KindAI); ok && ch == msg.ChannelID {
		r.complete(ctx, msg, out)
		return KindAI, true
	}
	if ch, ok := r.store.Get(msg.GuildID, KindImage); ok && ch == msg.ChannelID {
		r.generate(ctx, msg, out)
		return KindImage, true
	}
	return 0, false
}

func (r *Router) complete(ctx context.Context, msg Message, out Outbox) {
	text := r.completer.Complete(ctx, msg.Content)
	if _, err := out.Reply(r.render.Completion(text, msg.Author), nil); err != nil {
		slog.Error("failed to send ai reply", "guild", msg.GuildID, "channel", msg.ChannelID, tint.Err(err))
	}
}

// generate posts a provisional reply, then replaces it exactly once with
// the result or the error.
func (r *Router) generate(ctx context.Context, msg Message, out Outbox) {
	pendingID, err := out.Reply(r.render.ImagePending(msg.Content, msg.Author), nil)
	if err != nil {
		slog.Error("failed to send image placeholder", "guild", msg.GuildID, "channel", msg.ChannelID, tint.Err(err))
		return
	}

	embed := r.render.ImageError(msg.Author, true)
	var components []discordgo.MessageComponent
	img, err := r.generator.Generate(ctx, msg.Content)
	if err == nil {
		embed = r.render.Image(img, msg.Content, msg.Author)
		components = r.render.Links()
	}

	if err := out.Edit(pendingID, embed, components); err != nil {
		slog.Error("failed to update image reply", "guild", msg.GuildID, "message", pendingID, tint.Err(err))
	}
}
