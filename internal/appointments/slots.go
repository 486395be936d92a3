package appointments

import (
	"errors"
	"strings"
	"time"
)

const (
	// SlotDuration is the fixed length of every appointment.
	SlotDuration = 30 * time.Minute
	// SearchHorizonDays is how far past the start date the search walks (inclusive).
	SearchHorizonDays = 14
	// ClosedWeekday is the clinic's weekly day off.
	ClosedWeekday = time.Sunday

	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

var (
	ErrInvalidDate = errors.New("appointments: invalid date")
	ErrInvalidTime = errors.New("appointments: invalid time")
)

// Opening hours as [from, to) hour pairs. Slots start every 30 minutes.
var openingHours = [][2]int{{10, 13}, {14, 17}}

// CanonicalSlots returns the bookable start times of a working day in
// ascending order, formatted HH:MM:SS.
func CanonicalSlots() []string {
	var slots []string
	for _, window := range openingHours {
		for hour := window[0]; hour < window[1]; hour++ {
			for _, minute := range []int{0, 30} {
				slots = append(slots, time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format(timeLayout))
			}
		}
	}
	return slots
}

// ResolveDate turns "today", "tomorrow" (any case) or a YYYY-MM-DD literal
// into a midnight date in today's location.
func ResolveDate(input string, today time.Time) (time.Time, error) {
	today = truncateDay(today)
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(input), today.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

var timeInputLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// NormalizeTime accepts 24h or 12h clock input and returns HH:MM:SS.
func NormalizeTime(input string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(input))
	for _, layout := range timeInputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", ErrInvalidTime
}

// EndTime adds SlotDuration to an HH:MM:SS start. A slot may not cross midnight.
func EndTime(start string) (string, error) {
	t, err := time.Parse(timeLayout, start)
	if err != nil {
		return "", ErrInvalidTime
	}
	end := t.Add(SlotDuration)
	if end.Day() != t.Day() {
		return "", ErrInvalidTime
	}
	return end.Format(timeLayout), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
