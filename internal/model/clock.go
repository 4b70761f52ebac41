package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses an advisory "HH:MM" string. Single-digit hours ("9:00")
// are accepted. ok is false for anything unparseable or out of range.
func ParseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// FormatClock renders minutes-of-day as zero-padded "HH:MM", wrapping past
// midnight.
func FormatClock(minutesOfDay int) string {
	minutesOfDay %= 24 * 60
	if minutesOfDay < 0 {
		minutesOfDay += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutesOfDay/60, minutesOfDay%60)
}
