package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_ListDentists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT dentist_id, name FROM dentists ORDER BY dentist_id`).
		WillReturnRows(pgxmock.NewRows([]string{"dentist_id", "name"}).
			AddRow(int64(1), "A").
			AddRow(int64(2), "B"))

	dentists, err := NewPostgresRepositoryWithDB(mock).ListDentists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Dentist{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, dentists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_LastDentistForPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT dentist_id FROM appointments WHERE patient_id = \$1\s+ORDER BY appointment_date DESC`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"dentist_id"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT dentist_id FROM appointments`).
		WithArgs(int64(8)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepositoryWithDB(mock)
	id, err := repo.LastDentistForPatient(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = repo.LastDentistForPatient(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNoPriorVisit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_BookedSlots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT dentist_id, appointment_start_time::text FROM appointments\s+WHERE appointment_date = \$1 AND status = 'Scheduled'`).
		WithArgs("2025-06-02").
		WillReturnRows(pgxmock.NewRows([]string{"dentist_id", "appointment_start_time"}).
			AddRow(int64(1), "10:00:00").
			AddRow(int64(1), "10:30:00").
			AddRow(int64(2), "14:00:00"))

	occ, err := NewPostgresRepositoryWithDB(mock).BookedSlots(context.Background(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, occ.Booked(1, "10:30:00"))
	assert.True(t, occ.Booked(2, "14:00:00"))
	assert.False(t, occ.Booked(2, "10:00:00"))
	assert.False(t, occ.Booked(3, "10:00:00"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Insert(t *testing.T) {
	appt := NewAppointment{
		DentistID: 1,
		PatientID: 7,
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00:00",
		EndTime:   "10:30:00",
	}
	insert := `INSERT INTO appointments \(dentist_id, patient_id, appointment_date, appointment_start_time, appointment_end_time, reason\)`

	tests := []struct {
		name    string
		err     error
		wantID  int64
		wantErr error
	}{
		{name: "ok", wantID: 31},
		{name: "slot taken", err: &pgconn.PgError{Code: "23505", ConstraintName: slotConstraint}, wantErr: ErrSlotTaken},
		{name: "unknown dentist", err: &pgconn.PgError{Code: "23503"}, wantErr: ErrUnknownReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectQuery(insert).
				WithArgs(int64(1), int64(7), "2025-06-02", "10:00:00", "10:30:00", pgxmock.AnyArg())
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(pgxmock.NewRows([]string{"appointment_id"}).AddRow(tt.wantID))
			}

			id, err := NewPostgresRepositoryWithDB(mock).Insert(context.Background(), appt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_CancelOnDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE appointments SET status = 'Cancelled'\s+WHERE patient_id = \$1 AND appointment_date = \$2 AND status = 'Scheduled'`).
		WithArgs(int64(7), "2025-06-02").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE appointments SET status = 'Cancelled'`).
		WithArgs(int64(7), "2025-06-02").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepositoryWithDB(mock)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	n, err := repo.CancelOnDate(context.Background(), 7, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CancelOnDate(context.Background(), 7, day)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListUpcoming(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM appointments a\s+JOIN dentists d ON d.dentist_id = a.dentist_id\s+WHERE a.patient_id = \$1 AND a.status = 'Scheduled' AND a.appointment_date >= \$2`).
		WithArgs(int64(7), "2025-05-30").
		WillReturnRows(pgxmock.NewRows([]string{"appointment_id", "appointment_date", "appointment_start_time", "appointment_end_time", "name"}).
			AddRow(int64(3), day, "10:00:00", "10:30:00", "A"))

	rows, err := NewPostgresRepositoryWithDB(mock).ListUpcoming(context.Background(), 7, time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []Upcoming{{ID: 3, Date: day, StartTime: "10:00:00", EndTime: "10:30:00", DentistName: "A"}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
