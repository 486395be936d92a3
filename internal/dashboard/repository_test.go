package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june2 = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM appointments WHERE appointment_date = \$1::date AND status = 'Scheduled'\) AS todays_bookings`).
		WithArgs("2025-06-02").
		WillReturnRows(pgxmock.NewRows([]string{"todays_bookings", "weekly_bookings", "monthly_bookings", "pending_jobs", "cancellations"}).
			AddRow(int64(3), int64(9), int64(20), int64(14), int64(2)))

	stats, err := NewRepositoryWithDB(mock).Stats(context.Background(), june2)
	require.NoError(t, err)
	assert.Equal(t, Stats{TodaysBookings: 3, WeeklyBookings: 9, MonthlyBookings: 20, PendingJobs: 14, Cancellations: 2}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DailyBookings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM appointments\s+WHERE appointment_date BETWEEN \$1 AND \$2\s+AND status = 'Scheduled'\s+GROUP BY appointment_date`).
		WithArgs("2025-06-01", "2025-06-30").
		WillReturnRows(pgxmock.NewRows([]string{"date", "bookings"}).
			AddRow("2025-06-02", int64(4)).
			AddRow("2025-06-10", int64(1)))

	counts, err := NewRepositoryWithDB(mock).DailyBookings(context.Background(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2025-06-02": 4, "2025-06-10": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TodaysBookings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`JOIN patients p ON a.patient_id = p.patient_id\s+JOIN dentists d ON a.dentist_id = d.dentist_id\s+WHERE a.appointment_date = \$1`).
		WithArgs("2025-06-02").
		WillReturnRows(pgxmock.NewRows([]string{"full_name", "name", "appointment_date", "appointment_start_time", "appointment_end_time"}).
			AddRow("Asha Patel", "A", "2025-06-02", "10:00:00", "10:30:00").
			AddRow("Ravi Kumar", "B", "2025-06-02", "14:00:00", "14:30:00"))

	rows, err := NewRepositoryWithDB(mock).TodaysBookings(context.Background(), june2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, TodayBooking{PatientName: "Asha Patel", DentistName: "A", Date: "2025-06-02", Time: "10:00:00", EndTime: "10:30:00"}, rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MonthlyCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE status = 'Scheduled'\) AS bookings`).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"month_num", "bookings", "cancellations"}).
			AddRow(int32(1), int64(5), int64(1)).
			AddRow(int32(6), int64(12), int64(3)))

	counts, err := NewRepositoryWithDB(mock).MonthlyCounts(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, map[time.Month]MonthCounts{
		time.January: {Bookings: 5, Cancellations: 1},
		time.June:    {Bookings: 12, Cancellations: 3},
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
