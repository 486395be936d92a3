package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/dental-voice-api/internal/database"
)

// slotConstraint is the partial unique index over Scheduled slots.
const slotConstraint = "appointments_scheduled_slot_key"

// NewAppointment is the row written by a booking.
type NewAppointment struct {
	DentistID int64
	PatientID int64
	Date      time.Time
	StartTime string
	EndTime   string
	Reason    string
}

// Upcoming is a Scheduled appointment listed back to a patient.
type Upcoming struct {
	ID          int64
	Date        time.Time
	StartTime   string
	EndTime     string
	DentistName string
}

// Store is everything the appointment service reads and writes.
type Store interface {
	BookingSource
	ListDentists(ctx context.Context) ([]Dentist, error)
	LastDentistForPatient(ctx context.Context, patientID int64) (int64, error)
	Insert(ctx context.Context, a NewAppointment) (int64, error)
	CancelOnDate(ctx context.Context, patientID int64, day time.Time) (int64, error)
	ListUpcoming(ctx context.Context, patientID int64, from time.Time) ([]Upcoming, error)
}

// PostgresRepository implements Store on the dentists and appointments tables.
type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListDentists(ctx context.Context) ([]Dentist, error) {
	rows, err := r.db.Query(ctx, `SELECT dentist_id, name FROM dentists ORDER BY dentist_id`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list dentists: %w", err)
	}
	defer rows.Close()

	var dentists []Dentist
	for rows.Next() {
		var d Dentist
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("appointments: scan dentist: %w", err)
		}
		dentists = append(dentists, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list dentists: %w", err)
	}
	return dentists, nil
}

// LastDentistForPatient returns the dentist of the patient's most recent
// appointment, cancelled ones included.
func (r *PostgresRepository) LastDentistForPatient(ctx context.Context, patientID int64) (int64, error) {
	var dentistID int64
	err := r.db.QueryRow(ctx,
		`SELECT dentist_id FROM appointments WHERE patient_id = $1
		 ORDER BY appointment_date DESC, appointment_start_time DESC LIMIT 1`,
		patientID,
	).Scan(&dentistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoPriorVisit
		}
		return 0, fmt.Errorf("appointments: last visit: %w", err)
	}
	return dentistID, nil
}

func (r *PostgresRepository) BookedSlots(ctx context.Context, day time.Time) (Occupancy, error) {
	rows, err := r.db.Query(ctx,
		`SELECT dentist_id, appointment_start_time::text FROM appointments
		 WHERE appointment_date = $1 AND status = 'Scheduled'`,
		day.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked slots: %w", err)
	}
	defer rows.Close()

	booked := Occupancy{}
	for rows.Next() {
		var (
			dentistID int64
			start     string
		)
		if err := rows.Scan(&dentistID, &start); err != nil {
			return nil, fmt.Errorf("appointments: scan booked slot: %w", err)
		}
		booked.Add(dentistID, start)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: booked slots: %w", err)
	}
	return booked, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, a NewAppointment) (int64, error) {
	var reason *string
	if a.Reason != "" {
		reason = &a.Reason
	}
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO appointments (dentist_id, patient_id, appointment_date, appointment_start_time, appointment_end_time, reason)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING appointment_id`,
		a.DentistID, a.PatientID, a.Date.Format(dateLayout), a.StartTime, a.EndTime, reason,
	).Scan(&id)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, slotConstraint):
			return 0, ErrSlotTaken
		case database.IsForeignKeyViolation(err):
			return 0, ErrUnknownReference
		}
		return 0, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return id, nil
}

// CancelOnDate moves the patient's Scheduled appointments on day to
// Cancelled and returns how many changed.
func (r *PostgresRepository) CancelOnDate(ctx context.Context, patientID int64, day time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET status = 'Cancelled'
		 WHERE patient_id = $1 AND appointment_date = $2 AND status = 'Scheduled'`,
		patientID, day.Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("appointments: cancel failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) ListUpcoming(ctx context.Context, patientID int64, from time.Time) ([]Upcoming, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.appointment_id, a.appointment_date, a.appointment_start_time::text, a.appointment_end_time::text, d.name
		 FROM appointments a
		 JOIN dentists d ON d.dentist_id = a.dentist_id
		 WHERE a.patient_id = $1 AND a.status = 'Scheduled' AND a.appointment_date >= $2
		 ORDER BY a.appointment_date, a.appointment_start_time`,
		patientID, from.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: list upcoming: %w", err)
	}
	defer rows.Close()

	var out []Upcoming
	for rows.Next() {
		var u Upcoming
		if err := rows.Scan(&u.ID, &u.Date, &u.StartTime, &u.EndTime, &u.DentistName); err != nil {
			return nil, fmt.Errorf("appointments: scan upcoming: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list upcoming: %w", err)
	}
	return out, nil
}
