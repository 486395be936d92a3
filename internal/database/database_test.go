package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "patients_phone_key"}
	wrapped := fmt.Errorf("patients: insert: %w", dup)

	tests := []struct {
		name        string
		err         error
		constraints []string
		want        bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "other sqlstate", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "any constraint", err: wrapped, want: true},
		{name: "matching constraint", err: wrapped, constraints: []string{"users_user_email_key", "patients_phone_key"}, want: true},
		{name: "other constraint", err: wrapped, constraints: []string{"users_user_email_key"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err, tt.constraints...))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), PoolConfig{})
	assert.Error(t, err)
}

func TestMockPoolSatisfiesDB(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()
	var _ DB = mock
}
