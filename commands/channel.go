package commands

import (
	"github.com/brensch/llamabot/discord"
	"github.com/brensch/llamabot/routing"
	"github.com/bwmarrin/discordgo"
)

// SetAIRequest is the request for /channel setai.
type SetAIRequest struct {
	Channel string `discord:"channel,type:channel,description:The channel to enable AI for"`
}

// RemoveAIRequest is the request for /channel setai-remove.
type RemoveAIRequest struct {
	Channel string `discord:"channel,type:channel,description:The channel to remove AI from"`
}

func (h *Handlers) channelCommand() *discord.BotCommand {
	return discord.NewBotCommand("channel", "Channel management commands",
		discord.NewBotFunction("setai", "Enable AI for a channel", h.handleSetAI),
		discord.NewBotFunction("setai-remove", "Remove AI from a channel", h.handleRemoveAI),
	).WithDefaultPermissions(discordgo.PermissionManageChannels)
}

func (h *Handlers) handleSetAI(inv *discord.Invocation, req SetAIRequest) (*discordgo.InteractionResponseData, error) {
	if req.Channel == "" {
		return ephemeral("Please choose a channel."), nil
	}
	return h.outcomeResponse(inv, h.routing.Enable(inv, inv.GuildID(), req.Channel, routing.KindAI)), nil
}

func (h *Handlers) handleRemoveAI(inv *discord.Invocation, req RemoveAIRequest) (*discordgo.InteractionResponseData, error) {
	if req.Channel == "" {
		return ephemeral("Please choose a channel."), nil
	}
	return h.outcomeResponse(inv, h.routing.Remove(inv, inv.GuildID(), req.Channel, routing.KindAI)), nil
}
