package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// SendEmbed posts an embed to the given channel.
func (b *Bot) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	return sendEmbed(b.session, channelID, embed)
}

// sendEmbed is shared with invocations, which relay to channels other than
// their own.
func sendEmbed(session Session, channelID string, embed *discordgo.MessageEmbed) error {
	if channelID == "" {
		return fmt.Errorf("no channel to send embed to")
	}
	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", channelID, err)
	}
	slog.Info("Embed sent", "channel", channelID)
	return nil
}

// SendEmbed posts an embed to a channel other than the invocation's own,
// such as a feedback relay channel.
func (inv *Invocation) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	return sendEmbed(inv.session, channelID, embed)
}
