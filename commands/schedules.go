package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/brensch/llamabot/discord"
	"github.com/brensch/llamabot/render"
	"github.com/brensch/llamabot/routing"
	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// Schedules returns the presence and report schedules. An empty cron
// expression disables a schedule; the report also needs a relay channel.
func (h *Handlers) Schedules(presenceCron, reportCron string) []discord.BotScheduleI {
	var schedules []discord.BotScheduleI
	if presenceCron != "" {
		schedules = append(schedules, discord.NewBotSchedule("presence", presenceCron, "", h.executePresence))
	}
	if reportCron != "" && h.feedbackChannelID != "" {
		schedules = append(schedules, discord.NewBotSchedule("report", reportCron, h.feedbackChannelID, h.executeReport))
	}
	return schedules
}

func (h *Handlers) presenceText(uptime time.Duration) string {
	counts := h.store.Counts()
	return fmt.Sprintf("Up %s | %d AI, %d image channels",
		render.Uptime(uptime), counts[routing.KindAI], counts[routing.KindImage])
}

func (h *Handlers) executePresence(_ context.Context, bot *discord.Bot) (*discordgo.MessageEmbed, error) {
	if err := bot.UpdateStatus(h.presenceText(bot.Uptime())); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return nil, nil
}

func (h *Handlers) executeReport(ctx context.Context, bot *discord.Bot) (*discordgo.MessageEmbed, error) {
	return h.report(ctx, bot.Uptime()), nil
}

// report summarises routing and the last day of history.
func (h *Handlers) report(ctx context.Context, uptime time.Duration) *discordgo.MessageEmbed {
	slog.Info("building activity report")
	counts := h.store.Counts()

	embed := h.render.Success("📊 Activity Report", "", nil)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Automated report"}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Uptime", Value: render.Uptime(uptime), Inline: true},
		{Name: "AI channels", Value: strconv.Itoa(counts[routing.KindAI]), Inline: true},
		{Name: "Image channels", Value: strconv.Itoa(counts[routing.KindImage]), Inline: true},
	}

	images, feedback := render.NotAvailable, render.NotAvailable
	if h.history != nil {
		since := h.now().Add(-24 * time.Hour)
		if stats, err := h.history.GenerationsSince(ctx, since); err != nil {
			slog.Error("failed to count generations", tint.Err(err))
		} else {
			images = fmt.Sprintf("%d (%d failed)", stats.Total, stats.Failed)
		}
		if n, err := h.history.FeedbackSince(ctx, since); err != nil {
			slog.Error("failed to count feedback", tint.Err(err))
		} else {
			feedback = strconv.FormatInt(n, 10)
		}
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Images (24h)", Value: images, Inline: true},
		&discordgo.MessageEmbedField{Name: "Feedback (24h)", Value: feedback, Inline: true},
	)
	return embed
}
