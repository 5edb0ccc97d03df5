package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Feedback is a message submitted with /bot feedback.
type Feedback struct {
	UserID    string
	Username  string
	GuildID   string
	GuildName string
	Message   string
	CreatedAt time.Time
}

// Generation is one image generation attempt. Error is empty on success.
type Generation struct {
	Prompt    string
	ImageID   string
	Status    string
	ImageURL  string
	Error     string
	Elapsed   time.Duration
	CreatedAt time.Time
}

func (c *Client) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS feedback (
			user_id TEXT NOT NULL,
			username TEXT NOT NULL,
			guild_id TEXT,
			guild_name TEXT,
			message TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS generations (
			prompt TEXT NOT NULL,
			image_id TEXT,
			status TEXT,
			image_url TEXT,
			error TEXT,
			elapsed_ms BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create history table: %w", err)
		}
	}
	slog.Info("history tables created or already exist")
	return nil
}

// RecordFeedback stores a feedback submission.
func (c *Client) RecordFeedback(ctx context.Context, f Feedback) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := c.DB.ExecContext(ctx,
		`INSERT INTO feedback (user_id, username, guild_id, guild_name, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.UserID, f.Username, f.GuildID, f.GuildName, f.Message, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// RecordGeneration stores an image generation attempt.
func (c *Client) RecordGeneration(ctx context.Context, g Generation) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := c.DB.ExecContext(ctx,
		`INSERT INTO generations (prompt, image_id, status, image_url, error, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.Prompt, g.ImageID, g.Status, g.ImageURL, g.Error, g.Elapsed.Milliseconds(), g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}
	return nil
}

// GenerationStats counts generation attempts since the given time.
type GenerationStats struct {
	Total  int64
	Failed int64
}

// GenerationsSince returns attempt counts recorded at or after since.
func (c *Client) GenerationsSince(ctx context.Context, since time.Time) (GenerationStats, error) {
	var stats GenerationStats
	row := c.DB.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE error <> '')
		FROM generations WHERE created_at >= ?`, since.UTC())
	if err := row.Scan(&stats.Total, &stats.Failed); err != nil {
		return stats, fmt.Errorf("failed to count generations: %w", err)
	}
	return stats, nil
}

// FeedbackSince returns the number of feedback submissions at or after since.
func (c *Client) FeedbackSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	row := c.DB.QueryRowContext(ctx, `SELECT count(*) FROM feedback WHERE created_at >= ?`, since.UTC())
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}
