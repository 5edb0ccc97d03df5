package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brensch/llamabot/db"
	"github.com/brensch/llamabot/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedules(t *testing.T) {
	assert.Empty(t, testHandlers(Options{}).Schedules("", ""))

	names := func(h *Handlers, presence, report string) []string {
		var out []string
		for _, s := range h.Schedules(presence, report) {
			out = append(out, s.GetName())
		}
		return out
	}

	assert.Equal(t, []string{"presence"}, names(testHandlers(Options{}), "0 */5 * * * *", "0 0 9 * * *"))
	assert.Equal(t, []string{"presence", "report"}, names(testHandlers(Options{FeedbackChannelID: "relay"}), "0 */5 * * * *", "0 0 9 * * *"))
}

func TestPresenceText(t *testing.T) {
	store := routing.NewStore()
	store.Set("G1", routing.KindAI, "a")
	store.Set("G2", routing.KindAI, "b")
	store.Set("G1", routing.KindImage, "c")

	got := testHandlers(Options{Store: store}).presenceText(90 * time.Minute)
	assert.Equal(t, "Up 0d 1h 30m 0s | 2 AI, 1 image channels", got)
}

func TestReport(t *testing.T) {
	store := routing.NewStore()
	store.Set("G1", routing.KindImage, "art")
	history := &fakeHistory{stats: db.GenerationStats{Total: 12, Failed: 2}, count: 3}

	embed := testHandlers(Options{Store: store, History: history}).report(context.Background(), time.Hour)

	assert.Equal(t, "📊 Activity Report", embed.Title)
	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, map[string]string{
		"Uptime":         "0d 1h 0m 0s",
		"AI channels":    "0",
		"Image channels": "1",
		"Images (24h)":   "12 (2 failed)",
		"Feedback (24h)": "3",
	}, values)
}

func TestReportWithoutHistory(t *testing.T) {
	for _, h := range []*Handlers{
		testHandlers(Options{}),
		testHandlers(Options{History: &fakeHistory{err: errors.New("closed")}}),
	} {
		embed := h.report(context.Background(), 0)
		require.Len(t, embed.Fields, 5)
		assert.Equal(t, "N/A", embed.Fields[3].Value)
		assert.Equal(t, "N/A", embed.Fields[4].Value)
	}
}
