package commands

import (
	"fmt"
	"log/slog"

	"github.com/brensch/llamabot/discord"
	"github.com/brensch/llamabot/routing"
	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// GenerateRequest is the request for /image generate.
type GenerateRequest struct {
	Prompt string `discord:"prompt,description:The text prompt for image generation"`
}

// SetImageRequest is the request for /image set-image.
type SetImageRequest struct {
	Channel string `discord:"channel,type:channel,description:The channel to enable automatic image generation for"`
}

// RemoveImageRequest is the request for /image remove-image.
type RemoveImageRequest struct {
	Channel string `discord:"channel,type:channel,description:The channel to remove automatic image generation from"`
}

func (h *Handlers) imageCommand() *discord.BotCommand {
	return discord.NewBotCommand("image", "Image generation commands",
		discord.NewBotFunction("generate", "Generate an image from a text prompt", h.handleGenerate),
		discord.NewBotFunction("set-image", "Set a channel for automatic image generation", h.handleSetImage),
		discord.NewBotFunction("remove-image", "Remove a channel from automatic image generation", h.handleRemoveImage),
	).WithDefaultPermissions(discordgo.PermissionViewChannel)
}

// handleGenerate replies with a placeholder, and returns the final embed
// which the dispatcher applies as an edit of that placeholder.
func (h *Handlers) handleGenerate(inv *discord.Invocation, req GenerateRequest) (*discordgo.InteractionResponseData, error) {
	user := inv.User()
	if !h.guard.Authorize(inv, routing.CapAdministrator, routing.CapManageChannels, routing.CapViewChannel) {
		return &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{h.render.PermissionDenied(user)},
			Flags:  discordgo.MessageFlagsEphemeral,
		}, nil
	}
	if req.Prompt == "" {
		return ephemeral("Please provide a prompt."), nil
	}

	if err := inv.Reply(embedResponse(h.render.ImagePending(req.Prompt, user))); err != nil {
		return nil, fmt.Errorf("failed to send image placeholder: %w", err)
	}

	img, err := h.generator.Generate(inv.Context(), req.Prompt)
	if err != nil {
		slog.Error("Error generating image", "guild", inv.GuildID(), tint.Err(err))
		return embedResponse(h.render.ImageError(user, false)), nil
	}

	data := embedResponse(h.render.Image(img, req.Prompt, user))
	data.Components = h.render.Links()
	return data, nil
}

func (h *Handlers) handleSetImage(inv *discord.Invocation, req SetImageRequest) (*discordgo.InteractionResponseData, error) {
	if req.Channel == "" {
		return ephemeral("Please choose a channel."), nil
	}
	return h.outcomeResponse(inv, h.routing.Enable(inv, inv.GuildID(), req.Channel, routing.KindImage)), nil
}

func (h *Handlers) handleRemoveImage(inv *discord.Invocation, req RemoveImageRequest) (*discordgo.InteractionResponseData, error) {
	if req.Channel == "" {
		return ephemeral("Please choose a channel."), nil
	}
	return h.outcomeResponse(inv, h.routing.Remove(inv, inv.GuildID(), req.Channel, routing.KindImage)), nil
}
