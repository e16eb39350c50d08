package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// timeLayout keeps a fixed-width fraction so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const entryColumns = `id, category, kind, output_path, inputs_json, started_at, finished_at,
    duration_seconds, duration_source, size_bytes, exit_code, error_message, created_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry          Entry
		category       string
		inputsJSON     sql.NullString
		startedRaw     string
		finishedRaw    sql.NullString
		duration       sql.NullFloat64
		durationSource sql.NullString
		sizeBytes      sql.NullInt64
		errorMessage   sql.NullString
		createdRaw     string
	)
	if err := scanner.Scan(
		&entry.ID,
		&category,
		&entry.Kind,
		&entry.OutputPath,
		&inputsJSON,
		&startedRaw,
		&finishedRaw,
		&duration,
		&durationSource,
		&sizeBytes,
		&entry.ExitCode,
		&errorMessage,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	entry.Category = Category(category)
	if inputsJSON.Valid && inputsJSON.String != "" {
		if err := json.Unmarshal([]byte(inputsJSON.String), &entry.Inputs); err != nil {
			return nil, err
		}
	}
	if t, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = t
	}
	if finishedRaw.Valid {
		if t, err := parseTimeString(finishedRaw.String); err == nil {
			entry.FinishedAt = &t
		}
	}
	entry.DurationSec = duration.Float64
	entry.DurationSource = durationSource.String
	entry.SizeBytes = sizeBytes.Int64
	entry.ErrorMessage = errorMessage.String
	if t, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = t
	}
	return &entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func nullableFloat(value float64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
