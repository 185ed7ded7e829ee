package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseDuration parses an m:ss label as shown next to a track.
func ParseDuration(label string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(label), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("duration %q: want m:ss", label)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("duration %q: minutes: %w", label, err)
	}
	s, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("duration %q: seconds: %w", label, err)
	}
	if m < 0 || s < 0 {
		return 0, fmt.Errorf("duration %q: negative field", label)
	}
	return time.Duration(m*60+s) * time.Second, nil
}
