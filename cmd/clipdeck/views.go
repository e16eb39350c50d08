package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipdeck/internal/api"
)

var titleCaser = cases.Title(language.English)

// formatLabel turns identifiers such as "pip_export" or "bottom-right" into
// display labels.
func formatLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	return titleCaser.String(value)
}

func parseAPITime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func formatDisplayTime(value string) string {
	t, ok := parseAPITime(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatRelativeTime(value string, now time.Time) string {
	t, ok := parseAPITime(value)
	if !ok {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

func buildLibraryCountRows(counts map[string]int) [][]string {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatLabel(key), humanize.Comma(int64(counts[key]))})
	}
	return rows
}

func buildDeviceRows(devices []api.Device) [][]string {
	rows := make([][]string, 0, len(devices))
	for _, device := range devices {
		rows = append(rows, []string{
			formatLabel(device.Type),
			strconv.Itoa(device.Index),
			device.Name,
		})
	}
	return rows
}

// buildLibraryRows renders entries in the order given; the daemon returns
// them newest first.
func buildLibraryRows(entries []api.LibraryEntry, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		status := "OK"
		if strings.TrimSpace(entry.Error) != "" {
			status = fmt.Sprintf("Failed (exit %d)", entry.ExitCode)
		}
		rows = append(rows, []string{
			shortID(entry.ID),
			formatLabel(entry.Category),
			formatLabel(entry.Kind),
			displayPath(entry.OutputPath),
			formatSeconds(entry.DurationSeconds),
			formatSize(entry.SizeBytes),
			formatRelativeTime(entry.CreatedAt, now),
			status,
		})
	}
	return rows
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

func displayPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "-"
	}
	return filepath.Clean(path)
}
