// Package discordtest provides an in-memory Discord session for tests.
package discordtest

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Sent is a message posted to a channel.
type Sent struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

// Session records every call made through it. Set the Err fields to make
// the matching call fail.
type Session struct {
	mu sync.Mutex

	Responses []*discordgo.InteractionResponse
	Edits     []*discordgo.WebhookEdit
	Sent      []Sent
	Edited    []*discordgo.MessageEdit
	Embeds    map[string][]*discordgo.MessageEmbed
	Commands  map[string][]*discordgo.ApplicationCommand
	Statuses  []string

	RespondErr error
	EditErr    error
	SendErr    error
	StatusErr  error

	Latency time.Duration

	nextID int
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{
		Embeds:   map[string][]*discordgo.MessageEmbed{},
		Commands: map[string][]*discordgo.ApplicationCommand{},
	}
}

func (s *Session) id() string {
	s.nextID++
	return fmt.Sprintf("m%d", s.nextID)
}

func (s *Session) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, resp)
	return s.RespondErr
}

func (s *Session) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Edits = append(s.Edits, edit)
	if s.EditErr != nil {
		return nil, s.EditErr
	}
	return &discordgo.Message{ID: s.id()}, nil
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return nil, s.SendErr
	}
	s.Sent = append(s.Sent, Sent{ChannelID: channelID, Message: data})
	return &discordgo.Message{ID: s.id(), ChannelID: channelID}, nil
}

func (s *Session) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Edited = append(s.Edited, m)
	if s.EditErr != nil {
		return nil, s.EditErr
	}
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return nil, s.SendErr
	}
	s.Embeds[channelID] = append(s.Embeds[channelID], embed)
	return &discordgo.Message{ID: s.id(), ChannelID: channelID}, nil
}

func (s *Session) ApplicationCommandBulkOverwrite(_ string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Commands[guildID] = commands
	return commands, nil
}

func (s *Session) UpdateCustomStatus(status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StatusErr != nil {
		return s.StatusErr
	}
	s.Statuses = append(s.Statuses, status)
	return nil
}

func (s *Session) HeartbeatLatency() time.Duration {
	return s.Latency
}

// Interaction builds a guild slash command interaction for command and
// subcommand with the given options.
func Interaction(guildID, command, subcommand string, perms int64, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	data := discordgo.ApplicationCommandInteractionData{Name: command}
	if subcommand != "" {
		data.Options = []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:    subcommand,
			Type:    discordgo.ApplicationCommandOptionSubCommand,
			Options: options,
		}}
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		// Snowflake for 2024-01-01.
		ID:        "1191168914227200000",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   guildID,
		ChannelID: "c-invoke",
		Data:      data,
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "u1", Username: "alice", Discriminator: "0"},
			Permissions: perms,
		},
	}}
}

// Option builds a string valued option.
func Option(name string, value interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}
