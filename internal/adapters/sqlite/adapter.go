// Package sqlite provides a SQLite-backed implementation of the mood store port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements ports.MoodStore for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection, runs the schema migration and seeds the
// built-in mood table. Existing rows are left untouched so operator edits
// survive restarts.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// :memory: databases are per-connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	if err := adapter.seed(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Profile(ctx context.Context, label string) (domain.MoodProfile, error) {
	label = domain.NormalizeLabel(label)
	row := a.db.QueryRowContext(ctx, "SELECT label, emoji, search_term FROM mood_profiles WHERE label = ?", label)

	var p domain.MoodProfile
	if err := row.Scan(&p.Label, &p.Emoji, &p.SearchTerm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MoodProfile{}, fmt.Errorf("mood %q: %w", label, domain.ErrNotFound)
		}
		return domain.MoodProfile{}, fmt.Errorf("failed to load mood profile: %w", err)
	}
	return p, nil
}

func (a *Adapter) List(ctx context.Context) ([]domain.MoodProfile, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT label, emoji, search_term FROM mood_profiles ORDER BY label ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list mood profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.MoodProfile{}
	for rows.Next() {
		var p domain.MoodProfile
		if err := rows.Scan(&p.Label, &p.Emoji, &p.SearchTerm); err != nil {
			return nil, fmt.Errorf("failed to scan mood profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood profiles: %w", err)
	}
	return profiles, nil
}

func (a *Adapter) Save(ctx context.Context, p domain.MoodProfile) error {
	p.Label = domain.NormalizeLabel(p.Label)
	if p.Label == "" {
		return fmt.Errorf("save mood profile: %w", domain.ErrInvalidArgument)
	}

	query := `
		INSERT INTO mood_profiles (label, emoji, search_term) VALUES (?, ?, ?)
		ON CONFLICT(label) DO UPDATE SET
			emoji=excluded.emoji,
			search_term=excluded.search_term,
			updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := a.db.ExecContext(ctx, query, p.Label, p.Emoji, p.SearchTerm); err != nil {
		return fmt.Errorf("failed to save mood profile %s: %w", p.Label, err)
	}
	return nil
}

func (a *Adapter) seed(ctx context.Context) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mood_profiles (label, emoji, search_term) VALUES (?, ?, ?)
		ON CONFLICT(label) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range domain.DefaultMoodProfiles() {
		if _, err := stmt.ExecContext(ctx, p.Label, p.Emoji, p.SearchTerm); err != nil {
			return fmt.Errorf("failed to seed mood %s: %w", p.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS mood_profiles (
		label TEXT PRIMARY KEY,
		emoji TEXT NOT NULL DEFAULT '',
		search_term TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	if _, err := a.db.Exec("ALTER TABLE mood_profiles ADD COLUMN updated_at DATETIME"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
