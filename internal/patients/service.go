// Package patients implements the voice tools that identify and register
// patients by phone.
package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/dental-voice-api/internal/outcome"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

const dateLayout = "2006-01-02"

// Caller-facing messages.
const (
	MsgNotFound       = "No patient found with this phone number."
	MsgCreateFailed   = "Failed to create a new patient record."
	MsgDuplicatePhone = "A patient with this phone number already exists."
	MsgMissingFields  = "Full name, date of birth and phone are required."
	MsgBadBirthDate   = "Date of birth must be in YYYY-MM-DD format."
)

// PatientResult is returned by verify and create.
type PatientResult struct {
	outcome.Result
	PatientID int64  `json:"patient_id,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// CreateRequest mirrors the create_patient tool arguments.
type CreateRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Gender      string `json:"gender,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Service verifies and registers patients.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("patients: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Verify looks a caller up by phone.
func (s *Service) Verify(ctx context.Context, phone string) PatientResult {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return PatientResult{Result: outcome.Failed(MsgNotFound)}
	}
	p, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return PatientResult{Result: outcome.Failed(MsgNotFound)}
		}
		s.logger.Error("verify patient failed", "error", err)
		return PatientResult{Result: outcome.Error(err)}
	}
	return PatientResult{Result: outcome.Success(""), PatientID: p.ID, FullName: p.FullName}
}

// Create registers a new patient. A phone that is already registered is a
// Failed result rather than a second record.
func (s *Service) Create(ctx context.Context, req CreateRequest) PatientResult {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.FullName == "" || req.Phone == "" || strings.TrimSpace(req.DateOfBirth) == "" {
		return PatientResult{Result: outcome.Failed(MsgMissingFields)}
	}
	dob, err := time.Parse(dateLayout, strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return PatientResult{Result: outcome.Failed(MsgBadBirthDate)}
	}

	id, err := s.repo.Create(ctx, NewPatient{
		FullName:    req.FullName,
		DateOfBirth: dob,
		Phone:       req.Phone,
		Gender:      strings.TrimSpace(req.Gender),
		Address:     strings.TrimSpace(req.Address),
	})
	switch {
	case errors.Is(err, ErrDuplicatePhone):
		return PatientResult{Result: outcome.Failed(MsgDuplicatePhone)}
	case err != nil:
		s.logger.Error("create patient failed", "error", err)
		return PatientResult{Result: outcome.Error(err)}
	case id == 0:
		return PatientResult{Result: outcome.Failed(MsgCreateFailed)}
	}
	s.logger.Info("patient created", "patient_id", id)
	return PatientResult{Result: outcome.Success(""), PatientID: id, FullName: req.FullName}
}
