package appointments

import (
	"context"
	"time"
)

// Dentist is read-only reference data.
type Dentist struct {
	ID   int64
	Name string
}

// Occupancy maps a dentist to the HH:MM:SS start times already held by
// Scheduled appointments on one day.
type Occupancy map[int64]map[string]struct{}

// Add records a booked start time.
func (o Occupancy) Add(dentistID int64, start string) {
	times, ok := o[dentistID]
	if !ok {
		times = map[string]struct{}{}
		o[dentistID] = times
	}
	times[start] = struct{}{}
}

// Booked reports whether the dentist already holds the start time.
func (o Occupancy) Booked(dentistID int64, start string) bool {
	_, ok := o[dentistID][start]
	return ok
}

// BookingSource loads the Scheduled bookings of a day.
type BookingSource interface {
	BookedSlots(ctx context.Context, day time.Time) (Occupancy, error)
}

// Slot is a free (date, start time, dentist) triple.
type Slot struct {
	Date    time.Time
	Time    string
	Dentist Dentist
}

// SlotQuery drives FindEarliest.
type SlotQuery struct {
	// Start is the first calendar day searched.
	Start time.Time
	// FixedTime, when set, is the only start time considered (HH:MM:SS).
	FixedTime string
	// Now is the current clinic-local time. Canonical slots on Now's day
	// must be strictly later than Now.
	Now time.Time
}

// SearchOrder puts the preferred dentist first when it is one of dentists
// and keeps the rest in their given order.
func SearchOrder(dentists []Dentist, preferredID int64) []Dentist {
	order := make([]Dentist, 0, len(dentists))
	rest := make([]Dentist, 0, len(dentists))
	for _, d := range dentists {
		if preferredID != 0 && d.ID == preferredID {
			order = append(order, d)
			continue
		}
		rest = append(rest, d)
	}
	return append(order, rest...)
}

// FindEarliest walks Start through Start+SearchHorizonDays, skipping the
// closed weekday, and returns the first free slot. Slot time is the outer
// loop and dentist order the inner one, so an earlier time with any dentist
// beats a later time with the preferred one. It returns nil when the
// horizon holds no free slot.
func FindEarliest(ctx context.Context, src BookingSource, order []Dentist, q SlotQuery) (*Slot, error) {
	if len(order) == 0 {
		return nil, nil
	}
	nowClock := q.Now.Format(timeLayout)
	day := truncateDay(q.Start)
	last := day.AddDate(0, 0, SearchHorizonDays)

	for ; !day.After(last); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == ClosedWeekday {
			continue
		}
		booked, err := src.BookedSlots(ctx, day)
		if err != nil {
			return nil, err
		}

		if q.FixedTime != "" {
			for _, d := range order {
				if !booked.Booked(d.ID, q.FixedTime) {
					return &Slot{Date: day, Time: q.FixedTime, Dentist: d}, nil
				}
			}
			continue
		}

		today := sameDay(day, q.Now)
		for _, slot := range CanonicalSlots() {
			if today && slot <= nowClock {
				continue
			}
			for _, d := range order {
				if !booked.Booked(d.ID, slot) {
					return &Slot{Date: day, Time: slot, Dentist: d}, nil
				}
			}
		}
	}
	return nil, nil
}
