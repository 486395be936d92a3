package auth

import "errors"

var (
	// ErrUserNotFound indicates no admin has the requested email.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrInvalidCredentials covers every login failure so callers cannot tell which part was wrong.
	ErrInvalidCredentials = errors.New("auth: incorrect email or password")
	// ErrEmailRegistered is returned when the pre-insert lookup finds the email.
	ErrEmailRegistered = errors.New("auth: email already registered")
	// ErrDuplicateUser is returned when a unique constraint trips on insert.
	ErrDuplicateUser = errors.New("auth: email or username already exists")
	// ErrInvalidInput flags missing email or password.
	ErrInvalidInput = errors.New("auth: email and password are required")
)
