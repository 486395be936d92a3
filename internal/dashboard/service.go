// Package dashboard serves the admin reporting endpoints. Every report
// degrades to an empty or zeroed result when its query fails.
package dashboard

import (
	"context"
	"time"

	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

type reportRepo interface {
	Stats(ctx context.Context, today time.Time) (Stats, error)
	DailyBookings(ctx context.Context, first, last time.Time) (map[string]int64, error)
	TodaysBookings(ctx context.Context, today time.Time) ([]TodayBooking, error)
	MonthlyCounts(ctx context.Context, year int) (map[time.Month]MonthCounts, error)
}

// Service builds the dashboard reports for the clinic's calendar.
type Service struct {
	repo   reportRepo
	logger *logging.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo reportRepo, loc *time.Location, logger *logging.Logger) *Service {
	if repo == nil {
		panic("dashboard: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, logger: logger, loc: loc, now: time.Now}
}

func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) Stats(ctx context.Context) Stats {
	stats, err := s.repo.Stats(ctx, s.today())
	if err != nil {
		s.logger.Error("dashboard stats failed", "error", err)
		return Stats{}
	}
	return stats
}

// Chart returns every day of the current month with its Scheduled count.
func (s *Service) Chart(ctx context.Context) []DayCount {
	today := s.today()
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	last := first.AddDate(0, 1, -1)

	counts, err := s.repo.DailyBookings(ctx, first, last)
	if err != nil {
		s.logger.Error("dashboard chart failed", "error", err)
		counts = nil
	}

	out := make([]DayCount, 0, last.Day())
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		out = append(out, DayCount{Date: key, Bookings: counts[key]})
	}
	return out
}

func (s *Service) TodaysBookings(ctx context.Context) []TodayBooking {
	rows, err := s.repo.TodaysBookings(ctx, s.today())
	if err != nil {
		s.logger.Error("dashboard todays bookings failed", "error", err)
		return []TodayBooking{}
	}
	if rows == nil {
		return []TodayBooking{}
	}
	return rows
}

// MonthlyBreakdown returns all twelve months of the current year.
func (s *Service) MonthlyBreakdown(ctx context.Context) []MonthCount {
	counts, err := s.repo.MonthlyCounts(ctx, s.today().Year())
	if err != nil {
		s.logger.Error("dashboard monthly breakdown failed", "error", err)
		counts = nil
	}
	out := make([]MonthCount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		c := counts[m]
		out = append(out, MonthCount{Month: m.String(), Bookings: c.Bookings, Cancellations: c.Cancellations})
	}
	return out
}
