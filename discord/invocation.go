package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrAlreadyReplied is returned by Reply once a reply has been sent or
	// attempted.
	ErrAlreadyReplied = errors.New("interaction already replied to")
	// ErrNotReplied is returned by Edit when there is nothing to edit, or
	// the reply was already edited.
	ErrNotReplied = errors.New("interaction has no reply to edit")

	errNoMember = errors.New("interaction has no guild member")
)

// ReplyState tracks how far an invocation's reply has progressed.
type ReplyState int

const (
	Unanswered ReplyState = iota
	Replied
	Edited
)

func (s ReplyState) String() string {
	switch s {
	case Unanswered:
		return "unanswered"
	case Replied:
		return "replied"
	case Edited:
		return "edited"
	default:
		return fmt.Sprintf("ReplyState(%d)", int(s))
	}
}

// Invocation is a single slash command invocation. A reply can be sent once
// and then edited once.
type Invocation struct {
	ctx         context.Context
	session     Session
	state       *discordgo.State
	interaction *discordgo.Interaction

	mu        sync.Mutex
	reply     ReplyState
	repliedAt time.Time
}

// NewInvocation wraps an application command interaction. state may be nil,
// in which case GuildName falls back to the guild ID.
func NewInvocation(ctx context.Context, session Session, state *discordgo.State, i *discordgo.Interaction) *Invocation {
	return &Invocation{
		ctx:         ctx,
		session:     session,
		state:       state,
		interaction: i,
	}
}

// Context returns the context the invocation is handled under.
func (inv *Invocation) Context() context.Context {
	return inv.ctx
}

// Interaction returns the underlying interaction.
func (inv *Invocation) Interaction() *discordgo.Interaction {
	return inv.interaction
}

// User returns the invoking user, whether the command ran in a guild or a DM.
func (inv *Invocation) User() *discordgo.User {
	if inv.interaction.Member != nil && inv.interaction.Member.User != nil {
		return inv.interaction.Member.User
	}
	return inv.interaction.User
}

// GuildID returns the guild the command ran in, or "" for DMs.
func (inv *Invocation) GuildID() string {
	return inv.interaction.GuildID
}

// GuildName returns the guild's name from the gateway state, falling back to
// its ID.
func (inv *Invocation) GuildName() string {
	if inv.GuildID() == "" {
		return "DM"
	}
	if inv.state != nil {
		if g, err := inv.state.Guild(inv.GuildID()); err == nil && g.Name != "" {
			return g.Name
		}
	}
	return inv.GuildID()
}

// ChannelID returns the channel the command ran in.
func (inv *Invocation) ChannelID() string {
	return inv.interaction.ChannelID
}

// Permissions returns the member's resolved permissions, as supplied by
// Discord with the interaction.
func (inv *Invocation) Permissions() (int64, error) {
	if inv.interaction.Member == nil {
		return 0, errNoMember
	}
	return inv.interaction.Member.Permissions, nil
}

// CreatedAt is when Discord created the interaction.
func (inv *Invocation) CreatedAt() time.Time {
	t, err := discordgo.SnowflakeTimestamp(inv.interaction.ID)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RepliedAt is when the reply was acknowledged, or zero.
func (inv *Invocation) RepliedAt() time.Time {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.repliedAt
}

// HeartbeatLatency is the gateway heartbeat latency.
func (inv *Invocation) HeartbeatLatency() time.Duration {
	return inv.session.HeartbeatLatency()
}

// State returns the reply state.
func (inv *Invocation) State() ReplyState {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.reply
}

// Reply sends the initial response. The invocation counts as replied even
// if sending fails, so no second reply is ever attempted.
func (inv *Invocation) Reply(data *discordgo.InteractionResponseData) error {
	inv.mu.Lock()
	if inv.reply != Unanswered {
		inv.mu.Unlock()
		return ErrAlreadyReplied
	}
	inv.reply = Replied
	inv.mu.Unlock()

	err := inv.session.InteractionRespond(inv.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to respond to interaction: %w", err)
	}

	inv.mu.Lock()
	inv.repliedAt = time.Now()
	inv.mu.Unlock()
	return nil
}

// Edit replaces the content of the reply. It may be called once, after
// Reply.
func (inv *Invocation) Edit(data *discordgo.InteractionResponseData) error {
	inv.mu.Lock()
	if inv.reply != Replied {
		inv.mu.Unlock()
		return ErrNotReplied
	}
	inv.reply = Edited
	inv.mu.Unlock()

	embeds := data.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	components := data.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	content := data.Content

	_, err := inv.session.InteractionResponseEdit(inv.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("failed to edit interaction response: %w", err)
	}
	return nil
}

// MessageThread replies to a channel message and edits those replies.
type MessageThread struct {
	session Session
	message *discordgo.Message
}

// Reply sends embed as a reply to the message and returns the new message ID.
func (t *MessageThread) Reply(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (string, error) {
	msg, err := t.session.ChannelMessageSendComplex(t.message.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
		Reference:  t.message.Reference(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send reply: %w", err)
	}
	return msg.ID, nil
}

// Edit replaces the embed and components of a reply sent by Reply.
func (t *MessageThread) Edit(messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{embed}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	_, err := t.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    t.message.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("failed to edit reply %s: %w", messageID, err)
	}
	return nil
}
