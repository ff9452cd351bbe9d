package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Initialize the Postgres schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRequestsQuery := `
	CREATE TABLE IF NOT EXISTS dropoff_requests (
		id TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dropoff_requests_created_at
	ON dropoff_requests(created_at, id);
	`

	statements := []string{
		createRequestsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DropoffSeed struct {
	ID        string     `json:"id"`
	Lon       float64    `json:"lon"`
	Lat       float64    `json:"lat"`
	CreatedAt *time.Time `json:"created_at"`
}

// Populate the database with drop-off requests from a JSON file.
// Seeds without an id get a fresh one; seeds without created_at are stamped now.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed dropoffs: read %q: %w", jsonPath, err)
	}

	var data []DropoffSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed dropoffs: parse json: %w", err)
	}

	now := time.Now().UTC()
	rows := make([]DropoffSeed, 0, len(data))
	for i, item := range data {
		if item.Lon < -180 || item.Lon > 180 || item.Lat < -90 || item.Lat > 90 {
			return fmt.Errorf("seed dropoffs: item %d: coordinates out of range: %v,%v", i+1, item.Lon, item.Lat)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.CreatedAt == nil {
			item.CreatedAt = &now
		}
		rows = append(rows, item)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed dropoffs: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO dropoff_requests (id, lon, lat, created_at, status)
	VALUES ($1, $2, $3, $4, 'pending')
	ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		return fmt.Errorf("seed dropoffs: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range rows {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Lon, d.Lat, *d.CreatedAt); err != nil {
			return fmt.Errorf("seed dropoffs: insert id=%s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed dropoffs: commit tx: %w", err)
	}

	return nil
}
