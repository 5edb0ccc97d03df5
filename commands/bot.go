package commands

import (
	"fmt"
	"log/slog"

	"github.com/brensch/llamabot/db"
	"github.com/brensch/llamabot/discord"
	"github.com/brensch/llamabot/render"
	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// NoOptions is the request for subcommands without options.
type NoOptions struct{}

// FeedbackRequest is the request for /bot feedback.
type FeedbackRequest struct {
	Message string `discord:"message,description:Your feedback message"`
}

const feedbackThanks = "Thank you for your feedback! It has been sent to our team."

func (h *Handlers) botCommand() *discord.BotCommand {
	return discord.NewBotCommand("bot", "Bot management commands",
		discord.NewBotFunction("uptime", "Show bot uptime", h.handleUptime),
		discord.NewBotFunction("ping", "Check bot latency", h.handlePing),
		discord.NewBotFunction("help", "Show bot help information", h.handleHelp),
		discord.NewBotFunction("feedback", "Send feedback to the bot developers", h.handleFeedback),
		discord.NewBotFunction("support", "Get support information", h.handleSupport),
		discord.NewBotFunction("invite", "Get bot invite link", h.handleInvite),
	)
}

func (h *Handlers) handleUptime(inv *discord.Invocation, _ NoOptions) (*discordgo.InteractionResponseData, error) {
	uptime := h.now().Sub(h.started)
	return embedResponse(h.render.Success("⏰ Bot Uptime", render.Uptime(uptime), inv.User())), nil
}

// handlePing measures the round trip of a provisional reply, then edits it
// into the result.
func (h *Handlers) handlePing(inv *discord.Invocation, _ NoOptions) (*discordgo.InteractionResponseData, error) {
	if err := inv.Reply(&discordgo.InteractionResponseData{Content: "Pinging..."}); err != nil {
		return nil, err
	}
	latency := inv.RepliedAt().Sub(inv.CreatedAt())

	embed := h.render.Success("🏓 Pong!", "", inv.User())
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Latency", Value: fmt.Sprintf("%dms", latency.Milliseconds()), Inline: true},
		{Name: "API Latency", Value: fmt.Sprintf("%dms", inv.HeartbeatLatency().Milliseconds()), Inline: true},
	}
	return embedResponse(embed), nil
}

func (h *Handlers) handleHelp(inv *discord.Invocation, _ NoOptions) (*discordgo.InteractionResponseData, error) {
	embed := h.render.Success("📋 Bot Commands", "", inv.User())
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:  "Channel Commands",
			Value: "`/channel setai <#channel>` - Enable AI for a channel\n`/channel setai-remove <#channel>` - Remove AI from a channel",
		},
		{
			Name:  "Image Commands",
			Value: "`/image generate <prompt>` - Generate an image from text\n`/image set-image <#channel>` - Enable auto image generation\n`/image remove-image <#channel>` - Remove auto image generation",
		},
		{
			Name:  "Bot Commands",
			Value: "`/bot ping` - Check bot latency\n`/bot uptime` - Show bot uptime\n`/bot help` - Show this help menu\n`/bot feedback <message>` - Send feedback\n`/bot support` - Get support info\n`/bot invite` - Get invite link",
		},
	}
	return embedResponse(embed), nil
}

// handleFeedback relays and archives the feedback. Neither failing stops the
// user from being thanked.
func (h *Handlers) handleFeedback(inv *discord.Invocation, req FeedbackRequest) (*discordgo.InteractionResponseData, error) {
	user := inv.User()
	if req.Message == "" {
		return ephemeral("Please include a feedback message."), nil
	}

	if h.feedbackChannelID != "" {
		embed := h.render.Success("💬 New Feedback", "", user)
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(user), userID(user)), Inline: true},
			{Name: "Server", Value: inv.GuildName(), Inline: true},
			{Name: "Message", Value: req.Message},
		}
		if err := inv.SendEmbed(h.feedbackChannelID, embed); err != nil {
			slog.Error("Error sending feedback", tint.Err(err))
		}
	}

	if h.history != nil {
		err := h.history.RecordFeedback(inv.Context(), db.Feedback{
			UserID:    userID(user),
			Username:  userTag(user),
			GuildID:   inv.GuildID(),
			GuildName: inv.GuildName(),
			Message:   req.Message,
			CreatedAt: h.now().UTC(),
		})
		if err != nil {
			slog.Error("failed to archive feedback", tint.Err(err))
		}
	}

	return ephemeral(feedbackThanks), nil
}

func (h *Handlers) handleSupport(inv *discord.Invocation, _ NoOptions) (*discordgo.InteractionResponseData, error) {
	support := h.support
	if support == "" {
		support = render.NotAvailable
	}
	return embedResponse(h.render.Success("🛠️ Support", support, inv.User())), nil
}

func (h *Handlers) handleInvite(inv *discord.Invocation, _ NoOptions) (*discordgo.InteractionResponseData, error) {
	desc := fmt.Sprintf("[Click here to invite the bot to your server](%s)", render.InviteURL(h.appID))
	return embedResponse(h.render.Success("🔗 Invite Bot", desc, inv.User())), nil
}

func userTag(u *discordgo.User) string {
	if u == nil {
		return "unknown"
	}
	return u.String()
}

func userID(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
