package utils

import (
	"fmt"
	"time"
)

// FormatSize formats a byte count into a human readable string.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}

// FormatSpeed formats a transfer rate in bytes per second.
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.1f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/1024/1024)
	}
	return fmt.Sprintf("%.1f GB/s", bytesPerSecond/1024/1024/1024)
}

// FormatDuration renders a duration as "Xh Ym Zs", dropping leading
// zero components.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	s := d - m*time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s/time.Second)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s/time.Second)
	}
	return fmt.Sprintf("%ds", s/time.Second)
}

// FormatETA renders an estimated remaining time in spoken form,
// e.g. "3 minutes and 12 seconds".
func FormatETA(d time.Duration) string {
	seconds := int64(d.Seconds())
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d minutes and %d seconds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%d hours and %d minutes", seconds/3600, (seconds%3600)/60)
	}
}
