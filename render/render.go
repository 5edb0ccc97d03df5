// Package render builds the embeds and components the bot replies with.
// Nothing here fails; missing optional values render as NotAvailable.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brensch/llamabot/imagegen"
	"github.com/bwmarrin/discordgo"
)

const (
	// NotAvailable stands in for missing optional values.
	NotAvailable = "N/A"

	DefaultSuccessColor = 0x5865F2
	DefaultErrorColor   = 0xFF0000
)

// Renderer holds the presentation settings shared by every reply.
type Renderer struct {
	SuccessColor int
	ErrorColor   int
	// InviteURL and SupportURL back the link buttons on image replies.
	InviteURL  string
	SupportURL string

	Now func() time.Time
}

// ParseColor converts "#RRGGBB" (or "RRGGBB") to an embed color, returning
// fallback when s does not parse.
func ParseColor(s string, fallback int) int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil || v < 0 || v > 0xFFFFFF {
		return fallback
	}
	return int(v)
}

// InviteURL returns the OAuth2 URL that adds the application to a server.
func InviteURL(appID string) string {
	return fmt.Sprintf("https://discord.com/api/oauth2/authorize?client_id=%s&permissions=8&scope=bot%%20applications.commands", appID)
}

func (r Renderer) timestamp() string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// footer credits the requesting user. avatar adds their avatar icon.
func footer(user *discordgo.User, avatar bool) *discordgo.MessageEmbedFooter {
	if user == nil {
		return nil
	}
	f := &discordgo.MessageEmbedFooter{Text: "Requested by: " + user.Username}
	if avatar {
		f.IconURL = user.AvatarURL("")
	}
	return f
}

// Success builds a success colored embed.
func (r Renderer) Success(title, description string, user *discordgo.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       r.SuccessColor,
		Timestamp:   r.timestamp(),
		Footer:      footer(user, false),
	}
}

// Error builds an error colored embed.
func (r Renderer) Error(title, description string, user *discordgo.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       r.ErrorColor,
		Timestamp:   r.timestamp(),
		Footer:      footer(user, false),
	}
}

// PermissionDenied is shown when a member lacks the required permissions.
func (r Renderer) PermissionDenied(user *discordgo.User) *discordgo.MessageEmbed {
	return r.Error("❌ Permission Denied",
		"You do not have permission to use this command. Required permissions: Administrator, Manage Channels, or View Channel.",
		user)
}

// Completion wraps an AI reply.
func (r Renderer) Completion(text string, user *discordgo.User) *discordgo.MessageEmbed {
	if strings.TrimSpace(text) == "" {
		text = NotAvailable
	}
	return &discordgo.MessageEmbed{
		Description: text,
		Color:       r.SuccessColor,
		Timestamp:   r.timestamp(),
		Footer:      footer(user, false),
	}
}

// ImagePending is the provisional reply shown while an image generates.
func (r Renderer) ImagePending(prompt string, user *discordgo.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⏳ Generating Image...",
		Description: fmt.Sprintf("**Prompt:**\n```%s```\n\n🎨 Please wait while we generate your image...", prompt),
		Color:       r.SuccessColor,
		Timestamp:   r.timestamp(),
		Footer:      footer(user, true),
	}
}

// Image renders a generation result. prompt is used when the result does
// not echo one back.
func (r Renderer) Image(img *imagegen.Image, prompt string, user *discordgo.User) *discordgo.MessageEmbed {
	if img == nil {
		img = &imagegen.Image{}
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🎨 Image Generate",
		Description: fmt.Sprintf("**Prompt:**\n```%s```", img.Prompt.Or(prompt)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Information",
				Value: fmt.Sprintf("**imageId:** %s\n**status:** %s\n**duration:** %s",
					img.ImageID.Or(NotAvailable), img.Status.Or(NotAvailable), img.Duration.Or(NotAvailable)),
			},
		},
		Color:     r.SuccessColor,
		Timestamp: r.timestamp(),
		Footer:    footer(user, true),
	}
	if img.URL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: img.URL}
	}
	return embed
}

// ImageError replaces the provisional reply when generation fails.
// automatic selects the wording used for image-enabled channels.
func (r Renderer) ImageError(user *discordgo.User, automatic bool) *discordgo.MessageEmbed {
	desc := "Sorry, there was an error generating the image. Please try again later."
	if automatic {
		desc = "Sorry, there was an error generating the image automatically. Please try again later."
	}
	return &discordgo.MessageEmbed{
		Title:       "❌ Error",
		Description: desc,
		Color:       r.ErrorColor,
		Timestamp:   r.timestamp(),
		Footer:      footer(user, true),
	}
}

// Links returns the invite/support button row. Buttons without a URL are
// left out; nil is returned when neither is configured.
func (r Renderer) Links() []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	if r.InviteURL != "" {
		buttons = append(buttons, discordgo.Button{Label: "Invite Bot", Style: discordgo.LinkButton, URL: r.InviteURL})
	}
	if r.SupportURL != "" {
		buttons = append(buttons, discordgo.Button{Label: "Join Server", Style: discordgo.LinkButton, URL: r.SupportURL})
	}
	if len(buttons) == 0 {
		return nil
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// Uptime formats d as "1d 2h 3m 4s".
func Uptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
