package devices

import (
	"strconv"
	"strings"
)

// Category classifies a capture device.
type Category string

const (
	Screen Category = "screen"
	Webcam Category = "webcam"
	Audio  Category = "audio"
)

// Device is one entry of the encoder's device catalog. Index is assigned by
// the encoder and is not stable across driver or OS changes.
type Device struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Category Category `json:"type"`
}

const (
	videoHeader   = "video devices"
	audioHeader   = "audio devices"
	screenPhrase  = "capture screen"
	sectionNone   = 0
	sectionVideo  = 1
	sectionAudio  = 2
)

// Parse extracts devices from device-enumeration diagnostic text. It never
// fails; text without a recognizable catalog yields an empty slice. Lines of
// any length are scanned.
func Parse(text string) []Device {
	devices := make([]Device, 0, 8)
	section := sectionNone

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, videoHeader):
			section = sectionVideo
			continue
		case strings.Contains(lower, audioHeader):
			section = sectionAudio
			continue
		}
		if section == sectionNone {
			continue
		}
		index, name, ok := parseEntry(line)
		if !ok {
			continue
		}
		devices = append(devices, Device{Index: index, Name: name, Category: classify(name, section)})
	}
	return devices
}

// parseEntry finds the first bracketed non-negative integer on the line and
// returns it with the trimmed text that follows. Each attempt resumes just
// past the '[' it inspected.
func parseEntry(line string) (int, string, bool) {
	pos := 0
	for pos < len(line) {
		open := strings.IndexByte(line[pos:], '[')
		if open < 0 {
			return 0, "", false
		}
		open += pos
		end := strings.IndexByte(line[open+1:], ']')
		if end < 0 {
			return 0, "", false
		}
		end += open + 1
		if n, err := strconv.Atoi(strings.TrimSpace(line[open+1 : end])); err == nil && n >= 0 {
			return n, strings.TrimSpace(line[end+1:]), true
		}
		pos = open + 1
	}
	return 0, "", false
}

func classify(name string, section int) Category {
	if strings.Contains(strings.ToLower(name), screenPhrase) {
		return Screen
	}
	if section == sectionAudio {
		return Audio
	}
	return Webcam
}
