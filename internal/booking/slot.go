package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const DefaultDuration = 30 * time.Minute

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidTime reports whether s is a strict 24-hour HH:MM literal.
func ValidTime(s string) bool {
	return clockPattern.MatchString(strings.TrimSpace(s))
}

// Slot is a concrete appointment window in the formats the scheduling
// service expects.
type Slot struct {
	Clock     string // HH:MM as typed
	Date      string // YYYY-MM-DD
	Timestamp string // YYYY-MM-DDTHH:MM:00.000Z
	StartTime string // HH:MM:00
	EndTime   string // HH:MM:00
	Duration  time.Duration
}

// TomorrowAt plans a slot for the day after now at clock. End time wraps
// past midnight without changing the date.
func TomorrowAt(clock string, now time.Time, duration time.Duration) (Slot, error) {
	clock = strings.TrimSpace(clock)
	if !ValidTime(clock) {
		return Slot{}, fmt.Errorf("booking: invalid time %q", clock)
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	start, err := time.Parse("15:04", clock)
	if err != nil {
		return Slot{}, fmt.Errorf("booking: parse time %q: %w", clock, err)
	}
	date := now.AddDate(0, 0, 1).Format("2006-01-02")

	return Slot{
		Clock:     clock,
		Date:      date,
		Timestamp: fmt.Sprintf("%sT%s:00.000Z", date, clock),
		StartTime: start.Format("15:04:05"),
		EndTime:   start.Add(duration).Format("15:04:05"),
		Duration:  duration,
	}, nil
}
