package routing

import (
	"fmt"
	"log/slog"
)

// OutcomeStatus classifies the result of a routing command.
type OutcomeStatus int

const (
	OutcomeEnabled OutcomeStatus = iota
	OutcomeRemoved
	OutcomeNotEnabled
	OutcomePermissionDenied
)

// Outcome is the result of an Enable or Remove call. Message is empty for
// OutcomePermissionDenied; callers render the denial themselves.
type Outcome struct {
	Status   OutcomeStatus
	Kind     Kind
	Channel  string
	Previous string
	// Ephemeral marks outcomes that should only be shown to the invoker.
	Ephemeral bool
	Message   string
}

// Changed reports whether the store was mutated.
func (o Outcome) Changed() bool {
	return o.Status == OutcomeEnabled || o.Status == OutcomeRemoved
}

type kindText struct {
	label         string
	channelLabel  string
	enableCommand string
}

var kindTexts = map[Kind]kindText{
	KindAI: {
		label:         "AI",
		channelLabel:  "AI channel",
		enableCommand: "/channel setai",
	},
	KindImage: {
		label:         "Automatic image generation",
		channelLabel:  "image channel",
		enableCommand: "/image set-image",
	},
}

// Commands applies routing commands to a Store after checking permissions.
type Commands struct {
	store *Store
	guard Guard
}

// NewCommands creates a Commands bound to store.
func NewCommands(store *Store) *Commands {
	return &Commands{store: store}
}

// Enable routes kind for the guild to channelID, replacing any previous
// channel.
func (c *Commands) Enable(member Member, guildID, channelID string, kind Kind) Outcome {
	if !c.guard.Authorize(member, ManageRouting...) {
		slog.Info("routing enable denied", "guild", guildID, "channel", channelID, "kind", kind)
		return Outcome{Status: OutcomePermissionDenied, Kind: kind, Channel: channelID, Ephemeral: true}
	}

	text := kindTexts[kind]
	previous, had := c.store.Set(guildID, kind, channelID)

	msg := fmt.Sprintf("%s has been enabled for %s", text.label, mention(channelID))
	out := Outcome{Status: OutcomeEnabled, Kind: kind, Channel: channelID}
	if had && previous != channelID {
		out.Previous = previous
		msg += fmt.Sprintf("\n⚠️ Previous %s %s has been disabled.", text.channelLabel, mention(previous))
	}
	if other, ok := c.store.Get(guildID, kind.other()); ok && other == channelID {
		msg += fmt.Sprintf("\nℹ️ %s is also the %s; AI replies take precedence there.",
			mention(channelID), kindTexts[kind.other()].channelLabel)
	}
	out.Message = msg

	slog.Info("routing enabled", "guild", guildID, "channel", channelID, "kind", kind, "previous", out.Previous)
	return out
}

// Remove clears the guild's routing for kind when it currently points at
// channelID.
func (c *Commands) Remove(member Member, guildID, channelID string, kind Kind) Outcome {
	if !c.guard.Authorize(member, ManageRouting...) {
		slog.Info("routing remove denied", "guild", guildID, "channel", channelID, "kind", kind)
		return Outcome{Status: OutcomePermissionDenied, Kind: kind, Channel: channelID, Ephemeral: true}
	}

	text := kindTexts[kind]
	if _, ok := c.store.Remove(guildID, kind, channelID); !ok {
		return Outcome{
			Status:    OutcomeNotEnabled,
			Kind:      kind,
			Channel:   channelID,
			Ephemeral: true,
			Message: fmt.Sprintf("%s is not enabled for %s. Use %s first to enable it for this channel.",
				text.label, mention(channelID), text.enableCommand),
		}
	}

	slog.Info("routing removed", "guild", guildID, "channel", channelID, "kind", kind)
	return Outcome{
		Status:  OutcomeRemoved,
		Kind:    kind,
		Channel: channelID,
		Message: fmt.Sprintf("%s has been removed from %s", text.label, mention(channelID)),
	}
}

func mention(channelID string) string {
	return "<#" + channelID + ">"
}
