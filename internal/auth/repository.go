package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/dental-voice-api/internal/database"
)

// User is an admin account row.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

// PublicUser is the part of an admin that may leave the service.
type PublicUser struct {
	ID    int64  `json:"user_id"`
	Name  string `json:"user_name"`
	Email string `json:"user_email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRepository persists admin users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, name, email, passwordHash string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// PostgresUserRepository implements UserRepository against the users table.
type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresUserRepository{db: pool}
}

// NewPostgresUserRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresUserRepositoryWithDB(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT user_id, user_name, user_email, password_hash FROM users WHERE user_email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: select user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (user_name, user_email, password_hash) VALUES ($1, $2, $3) RETURNING user_id`,
		name, email, passwordHash,
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("auth: insert user: %w", err)
	}
	return id, nil
}

func (r *PostgresUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("auth: count users: %w", err)
	}
	return n, nil
}
