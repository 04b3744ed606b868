// Package srt parses SubRip subtitle text into timed captions and answers
// which caption is active at a given playback position.
package srt

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Caption is one timed subtitle line. Times are seconds from track start.
type Caption struct {
	Index     int     `json:"index"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
	Duration  float64 `json:"duration"`
}

// timeRangePattern matches "HH:MM:SS,mmm --> HH:MM:SS,mmm".
var timeRangePattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})$`)

// Parse converts raw SRT text into captions sorted ascending by start time.
// Malformed blocks are skipped silently; malformed input yields an empty
// slice, never an error. Source files with out-of-order blocks are tolerated.
func Parse(raw string) []Caption {
	captions := []Caption{}
	for _, block := range splitBlocks(raw) {
		if c, ok := parseBlock(block); ok {
			captions = append(captions, c)
		}
	}
	sort.SliceStable(captions, func(i, j int) bool {
		return captions[i].StartTime < captions[j].StartTime
	})
	return captions
}

// IsValid is a cheap well-formedness probe: it checks only that the first
// block of the input would parse, without committing to a full parse.
func IsValid(raw string) bool {
	blocks := splitBlocks(raw)
	if len(blocks) == 0 {
		return false
	}
	_, ok := parseBlock(blocks[0])
	return ok
}

// FindActive returns the first caption whose [StartTime, EndTime] range
// contains t, inclusive on both ends. Overlaps resolve to the earliest
// caption in the sorted sequence. Returns nil if no caption is active.
func FindActive(captions []Caption, t float64) *Caption {
	for i := range captions {
		if t >= captions[i].StartTime && t <= captions[i].EndTime {
			return &captions[i]
		}
	}
	return nil
}

// splitBlocks splits raw text on blank-line boundaries. Lines containing
// only whitespace count as blank; CR line endings are tolerated.
func splitBlocks(raw string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// parseBlock parses one SRT block: index line, time-range line, text lines.
// Blocks shorter than 3 lines, or with an unparseable index or time range,
// are rejected.
func parseBlock(lines []string) (Caption, bool) {
	if len(lines) < 3 {
		return Caption{}, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Caption{}, false
	}
	m := timeRangePattern.FindStringSubmatch(strings.TrimSpace(lines[1]))
	if m == nil {
		return Caption{}, false
	}
	start := toSeconds(m[1], m[2], m[3], m[4])
	end := toSeconds(m[5], m[6], m[7], m[8])
	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	return Caption{
		Index:     index,
		StartTime: start,
		EndTime:   end,
		Text:      text,
		Duration:  end - start,
	}, true
}

// toSeconds converts pre-validated digit groups to seconds.
func toSeconds(h, m, s, ms string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}
