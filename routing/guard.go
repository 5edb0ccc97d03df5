package routing

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// Capability is a permission a command may require.
type Capability int

const (
	CapAdministrator Capability = iota + 1
	CapManageChannels
	CapViewChannel
)

// bit maps a Capability onto the Discord permission bitset.
func (c Capability) bit() int64 {
	switch c {
	case CapAdministrator:
		return discordgo.PermissionAdministrator
	case CapManageChannels:
		return discordgo.PermissionManageChannels
	case CapViewChannel:
		return discordgo.PermissionViewChannel
	default:
		return 0
	}
}

func (c Capability) String() string {
	switch c {
	case CapAdministrator:
		return "administrator"
	case CapManageChannels:
		return "manage-channels"
	case CapViewChannel:
		return "view-channel"
	default:
		return "unknown"
	}
}

// ManageRouting is the requirement shared by every routing mutation.
var ManageRouting = []Capability{CapAdministrator, CapManageChannels}

// Member resolves the permissions the invoking user holds in the guild.
type Member interface {
	Permissions() (int64, error)
}

// Guard decides whether a member may run a command.
type Guard struct{}

// Authorize reports whether member holds at least one of required. An empty
// requirement always passes; a failed lookup never does.
func (Guard) Authorize(member Member, required ...Capability) bool {
	if len(required) == 0 {
		return true
	}
	if member == nil {
		return false
	}

	perms, err := member.Permissions()
	if err != nil {
		slog.Warn("failed to resolve member permissions", tint.Err(err))
		return false
	}

	// Administrators hold every permission.
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, c := range required {
		if bit := c.bit(); bit != 0 && perms&bit == bit {
			return true
		}
	}
	return false
}
