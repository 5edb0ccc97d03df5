package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"github.com/robfig/cron/v3"
)

// BotScheduleI is a job the bot runs on a cron schedule. Expressions include
// a seconds field.
type BotScheduleI interface {
	GetName() string
	GetCronExpression() string
	// GetChannelID is where a returned embed is posted; empty discards it.
	GetChannelID() string
	// Execute runs the job. A nil embed means there is nothing to post.
	Execute(ctx context.Context, bot *Bot) (*discordgo.MessageEmbed, error)
}

// ScheduleFunc is the body of a scheduled job.
type ScheduleFunc func(ctx context.Context, bot *Bot) (*discordgo.MessageEmbed, error)

// GenericBotSchedule is a BotScheduleI backed by a function.
type GenericBotSchedule struct {
	Name           string
	CronExpression string
	ChannelID      string
	Handler        ScheduleFunc
}

func (bs *GenericBotSchedule) GetName() string           { return bs.Name }
func (bs *GenericBotSchedule) GetCronExpression() string { return bs.CronExpression }
func (bs *GenericBotSchedule) GetChannelID() string      { return bs.ChannelID }

func (bs *GenericBotSchedule) Execute(ctx context.Context, bot *Bot) (*discordgo.MessageEmbed, error) {
	return bs.Handler(ctx, bot)
}

// NewBotSchedule creates a scheduled job.
func NewBotSchedule(name, cronExpr, channelID string, handler ScheduleFunc) BotScheduleI {
	return &GenericBotSchedule{
		Name:           name,
		CronExpression: cronExpr,
		ChannelID:      channelID,
		Handler:        handler,
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{tint.Err(err)}, keysAndValues...)...)
}

// scheduleManager owns the cron runner for a bot's schedules.
type scheduleManager struct {
	bot       *Bot
	cron      *cron.Cron
	schedules []BotScheduleI
	ctx       context.Context
	cancel    context.CancelFunc
}

func newScheduleManager(bot *Bot, schedules []BotScheduleI) *scheduleManager {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{}
	return &scheduleManager{
		bot: bot,
		// A slow job is skipped rather than stacked, and a panicking one
		// does not take the runner down.
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		schedules: schedules,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (sm *scheduleManager) start() error {
	for _, schedule := range sm.schedules {
		sched := schedule
		if _, err := sm.cron.AddFunc(sched.GetCronExpression(), func() { sm.run(sched) }); err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", sched.GetName(), err)
		}
		slog.Info("registered schedule", "name", sched.GetName(), "cron", sched.GetCronExpression())
	}
	sm.cron.Start()
	slog.Info("schedule manager started", "schedules", len(sm.schedules))
	return nil
}

func (sm *scheduleManager) run(schedule BotScheduleI) {
	slog.Debug("executing schedule", "name", schedule.GetName())

	embed, err := schedule.Execute(sm.ctx, sm.bot)
	if err != nil {
		slog.Error("failed to execute schedule", "name", schedule.GetName(), tint.Err(err))
		return
	}
	if embed == nil || schedule.GetChannelID() == "" {
		return
	}
	if err := sm.bot.SendEmbed(schedule.GetChannelID(), embed); err != nil {
		slog.Error("failed to send schedule notification", "name", schedule.GetName(), tint.Err(err))
	}
}

// stop cancels running jobs and waits for them to return.
func (sm *scheduleManager) stop() {
	sm.cancel()
	<-sm.cron.Stop().Done()
	slog.Info("schedule manager stopped")
}
