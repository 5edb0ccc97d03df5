// Package db stores bot history in DuckDB.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver registration
)

const (
	fileName = "history.db"
	// Caps DuckDB's worker threads.
	dsnOptions = "?threads=4"
)

// Client is the DuckDB history store. The database file lives in dir.
type Client struct {
	DB  *sql.DB
	dir string
}

// NewClient opens (creating if needed) the history database under dir.
// Tables are created by Start.
func NewClient(dir string) (*Client, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat history directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	path := filepath.Join(dir, fileName)
	db, err := sql.Open("duckdb", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %s: %w", path, err)
	}
	return &Client{DB: db, dir: dir}, nil
}

// Start checks the connection and creates the history tables.
func (c *Client) Start(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}
	if err := c.createTables(ctx); err != nil {
		return err
	}
	slog.Info("history store ready", "path", filepath.Join(c.dir, fileName))
	return nil
}

// Stop closes the database.
func (c *Client) Stop() error {
	return c.DB.Close()
}

// Conn returns the underlying database connection for running queries directly.
func (c *Client) Conn() *sql.DB {
	return c.DB
}
