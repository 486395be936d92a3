package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/dental-voice-api/internal/database"
)

// Patient is a registered clinic patient.
type Patient struct {
	ID          int64
	FullName    string
	DateOfBirth time.Time
	Phone       string
	Gender      string
	Address     string
}

// NewPatient holds the fields for a registration. Gender and Address are
// optional and only written when non-empty.
type NewPatient struct {
	FullName    string
	DateOfBirth time.Time
	Phone       string
	Gender      string
	Address     string
}

// Repository looks patients up and registers new ones.
type Repository interface {
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, p NewPatient) (int64, error)
}

// PostgresRepository implements Repository on the patients table.
type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectPatient = `SELECT patient_id, full_name, date_of_birth, phone, COALESCE(gender, ''), COALESCE(address, '') FROM patients`

// GetByPhone returns the oldest patient registered with the phone.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	return r.getOne(ctx, selectPatient+` WHERE phone = $1 ORDER BY patient_id LIMIT 1`, phone)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.getOne(ctx, selectPatient+` WHERE patient_id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*Patient, error) {
	p := &Patient{}
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&p.ID, &p.FullName, &p.DateOfBirth, &p.Phone, &p.Gender, &p.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return p, nil
}

// Create inserts the patient, listing optional columns only when set.
func (r *PostgresRepository) Create(ctx context.Context, p NewPatient) (int64, error) {
	columns := []string{"full_name", "date_of_birth", "phone"}
	args := []any{p.FullName, p.DateOfBirth, p.Phone}
	if p.Gender != "" {
		columns = append(columns, "gender")
		args = append(args, p.Gender)
	}
	if p.Address != "" {
		columns = append(columns, "address")
		args = append(args, p.Address)
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO patients (%s) VALUES (%s) RETURNING patient_id",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if database.IsUniqueViolation(err, "patients_phone_key") {
			return 0, ErrDuplicatePhone
		}
		return 0, fmt.Errorf("patients: insert failed: %w", err)
	}
	return id, nil
}
