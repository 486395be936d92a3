package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/dental-voice-api/internal/database"
)

const dateLayout = "2006-01-02"

// Stats are the rolling booking counters shown on the dashboard. Revenue
// and turnaround are not tracked and always serialize as null.
type Stats struct {
	TodaysBookings  int64    `json:"todays_bookings"`
	WeeklyBookings  int64    `json:"weekly_bookings"`
	MonthlyBookings int64    `json:"monthly_bookings"`
	PendingJobs     int64    `json:"pending_jobs"`
	Cancellations   int64    `json:"cancellations"`
	RevenueToday    *float64 `json:"revenue_today"`
	RevenueMonth    *float64 `json:"revenue_month"`
	AvgTurnaroundHr *float64 `json:"avg_turnaround_hr"`
}

// DayCount is one bar of the month-to-date chart.
type DayCount struct {
	Date     string `json:"date"`
	Bookings int64  `json:"bookings"`
}

// TodayBooking is a row of today's schedule.
type TodayBooking struct {
	PatientName string `json:"patient_name"`
	DentistName string `json:"dentist_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"end_time"`
}

// MonthCount is one month of the yearly breakdown.
type MonthCount struct {
	Month         string `json:"month"`
	Bookings      int64  `json:"bookings"`
	Cancellations int64  `json:"cancellations"`
}

// Repository runs the reporting queries. Dates are passed in so "today" is
// the clinic's calendar day rather than the database server's.
type Repository struct {
	db database.DB
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("dashboard: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db database.DB) *Repository {
	return &Repository{db: db}
}

// Stats counts bookings in one statement.
func (r *Repository) Stats(ctx context.Context, today time.Time) (Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = $1::date AND status = 'Scheduled') AS todays_bookings,
			(SELECT COUNT(*) FROM appointments WHERE appointment_date >= $1::date - 7 AND status = 'Scheduled') AS weekly_bookings,
			(SELECT COUNT(*) FROM appointments WHERE appointment_date >= $1::date - 30 AND status = 'Scheduled') AS monthly_bookings,
			(SELECT COUNT(*) FROM appointments WHERE appointment_date >= $1::date AND status = 'Scheduled') AS pending_jobs,
			(SELECT COUNT(*) FROM appointments WHERE appointment_date >= $1::date - 30 AND status = 'Cancelled') AS cancellations
	`
	var s Stats
	err := r.db.QueryRow(ctx, query, today.Format(dateLayout)).
		Scan(&s.TodaysBookings, &s.WeeklyBookings, &s.MonthlyBookings, &s.PendingJobs, &s.Cancellations)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: stats: %w", err)
	}
	return s, nil
}

// DailyBookings returns Scheduled counts per day in [first, last], keyed
// YYYY-MM-DD. Days without bookings are absent.
func (r *Repository) DailyBookings(ctx context.Context, first, last time.Time) (map[string]int64, error) {
	query := `
		SELECT appointment_date::text AS date, COUNT(*) AS bookings
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2
		  AND status = 'Scheduled'
		GROUP BY appointment_date
	`
	rows, err := r.db.Query(ctx, query, first.Format(dateLayout), last.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("dashboard: daily bookings: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			day   string
			count int64
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("dashboard: scan daily bookings: %w", err)
		}
		out[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: iterate daily bookings: %w", err)
	}
	return out, nil
}

// TodaysBookings lists the day's Scheduled appointments by start time.
func (r *Repository) TodaysBookings(ctx context.Context, today time.Time) ([]TodayBooking, error) {
	query := `
		SELECT p.full_name, d.name, a.appointment_date::text,
		       a.appointment_start_time::text, a.appointment_end_time::text
		FROM appointments a
		JOIN patients p ON a.patient_id = p.patient_id
		JOIN dentists d ON a.dentist_id = d.dentist_id
		WHERE a.appointment_date = $1
		  AND a.status = 'Scheduled'
		ORDER BY a.appointment_start_time
	`
	rows, err := r.db.Query(ctx, query, today.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("dashboard: todays bookings: %w", err)
	}
	defer rows.Close()

	var out []TodayBooking
	for rows.Next() {
		var b TodayBooking
		if err := rows.Scan(&b.PatientName, &b.DentistName, &b.Date, &b.Time, &b.EndTime); err != nil {
			return nil, fmt.Errorf("dashboard: scan todays bookings: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: iterate todays bookings: %w", err)
	}
	return out, nil
}

// MonthCounts holds the Scheduled and Cancelled totals of one month.
type MonthCounts struct {
	Bookings      int64
	Cancellations int64
}

// MonthlyCounts returns per-month totals for the year keyed by month number.
// Months without appointments are absent.
func (r *Repository) MonthlyCounts(ctx context.Context, year int) (map[time.Month]MonthCounts, error) {
	query := `
		SELECT EXTRACT(MONTH FROM appointment_date)::int AS month_num,
		       COUNT(*) FILTER (WHERE status = 'Scheduled') AS bookings,
		       COUNT(*) FILTER (WHERE status = 'Cancelled') AS cancellations
		FROM appointments
		WHERE EXTRACT(YEAR FROM appointment_date)::int = $1
		GROUP BY month_num
		ORDER BY month_num
	`
	rows, err := r.db.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("dashboard: monthly breakdown: %w", err)
	}
	defer rows.Close()

	out := map[time.Month]MonthCounts{}
	for rows.Next() {
		var (
			month int32
			c     MonthCounts
		)
		if err := rows.Scan(&month, &c.Bookings, &c.Cancellations); err != nil {
			return nil, fmt.Errorf("dashboard: scan monthly breakdown: %w", err)
		}
		out[time.Month(month)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: iterate monthly breakdown: %w", err)
	}
	return out, nil
}
