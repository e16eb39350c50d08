package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Add inserts entry, assigning an ID and creation time when they are unset.
func (s *Store) Add(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	if strings.TrimSpace(entry.OutputPath) == "" {
		return errors.New("entry output path is required")
	}
	switch entry.Category {
	case CategoryRecording, CategoryExport:
	default:
		return fmt.Errorf("unknown entry category %q", entry.Category)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.CreatedAt
	}

	var inputs any
	if len(entry.Inputs) > 0 {
		raw, err := json.Marshal(entry.Inputs)
		if err != nil {
			return fmt.Errorf("marshal inputs: %w", err)
		}
		inputs = string(raw)
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		string(entry.Category),
		entry.Kind,
		entry.OutputPath,
		inputs,
		formatTime(entry.StartedAt),
		nullableTime(entry.FinishedAt),
		nullableFloat(entry.DurationSec),
		nullableString(entry.DurationSource),
		nullableInt64(entry.SizeBytes),
		entry.ExitCode,
		nullableString(entry.ErrorMessage),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Get fetches an entry by identifier. It returns nil when no entry matches.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Remove deletes an entry by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes every entry in category, or all entries when category is empty.
// Media files on disk are left alone.
func (s *Store) Clear(ctx context.Context, category Category) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if category == "" {
		res, err = s.execWithRetry(ctx, `DELETE FROM entries`)
	} else {
		res, err = s.execWithRetry(ctx, `DELETE FROM entries WHERE category = ?`, string(category))
	}
	if err != nil {
		return 0, fmt.Errorf("clear library: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of entries grouped by category.
func (s *Store) Stats(ctx context.Context) (map[Category]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT category, COUNT(1) FROM entries GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Category]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats[Category(category)] = count
	}
	return stats, rows.Err()
}
