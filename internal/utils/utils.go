package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHashrate converts a value string and optional unit suffix into raw H/s.
// Supported units: H/s, kH/s, MH/s, GH/s (case insensitive). Unparseable
// input yields 0; callers treat missing telemetry as zero, never as an error.
func ParseHashrate(value, unit string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	if unit == "" {
		return v
	}

	u := strings.ToLower(unit)
	switch {
	case strings.Contains(u, "gh"):
		return v * 1_000_000_000
	case strings.Contains(u, "mh"):
		return v * 1_000_000
	case strings.Contains(u, "kh"):
		return v * 1_000
	default:
		return v
	}
}

// FormatHashrate renders raw H/s as a human readable string.
func FormatHashrate(h float64) string {
	switch {
	case h >= 1_000_000_000:
		return fmt.Sprintf("%.2f GH/s", h/1_000_000_000)
	case h >= 1_000_000:
		return fmt.Sprintf("%.2f MH/s", h/1_000_000)
	case h >= 1_000:
		return fmt.Sprintf("%.2f kH/s", h/1_000)
	default:
		return fmt.Sprintf("%d H/s", int64(h))
	}
}

// FormatDuration renders a second count as "2d 4h 30m" style uptime.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := seconds / (3600 * 24)
	h := (seconds / 3600) % 24
	m := (seconds / 60) % 60
	s := seconds % 60

	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dm %ds", m, s)
	}
}
