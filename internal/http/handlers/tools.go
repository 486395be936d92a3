package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/dental-voice-api/internal/appointments"
	"github.com/wolfman30/dental-voice-api/internal/outcome"
	"github.com/wolfman30/dental-voice-api/internal/patients"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// Tool names as reported in logs and metrics.
const (
	ToolVerifyPatient   = "verify_patient"
	ToolCreatePatient   = "create_patient"
	ToolCheckAvailable  = "check_availability"
	ToolBookAppointment = "book_dentist_appointment"
	ToolListAppointment = "get_patient_appointments"
	ToolCancelBooking   = "cancel_booking"
)

const maxToolBody = 64 << 10

// PatientTools is the patient side of the voice tools.
type PatientTools interface {
	Verify(ctx context.Context, phone string) patients.PatientResult
	Create(ctx context.Context, req patients.CreateRequest) patients.PatientResult
}

// AppointmentTools is the scheduling side of the voice tools.
type AppointmentTools interface {
	CheckAvailability(ctx context.Context, req appointments.AvailabilityRequest) appointments.AvailabilityResult
	Book(ctx context.Context, req appointments.BookRequest) appointments.BookResult
	Cancel(ctx context.Context, req appointments.CancelRequest) outcome.Result
	ListForPatient(ctx context.Context, phone string) appointments.ListResult
}

// ToolRecorder receives one observation per tool call.
type ToolRecorder interface {
	ObserveTool(tool, status string, seconds float64)
}

// ToolsHandler exposes the domain operations to the voice assistant. Every
// handled call answers 200 with the operation's result object.
type ToolsHandler struct {
	patients     PatientTools
	appointments AppointmentTools
	recorder     ToolRecorder
	logger       *logging.Logger
}

// ToolsHandlerConfig configures the ToolsHandler.
type ToolsHandlerConfig struct {
	Patients     PatientTools
	Appointments AppointmentTools
	Recorder     ToolRecorder
	Logger       *logging.Logger
}

func NewToolsHandler(cfg ToolsHandlerConfig) *ToolsHandler {
	if cfg.Patients == nil || cfg.Appointments == nil {
		panic("handlers: patient and appointment services required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &ToolsHandler{
		patients:     cfg.Patients,
		appointments: cfg.Appointments,
		recorder:     cfg.Recorder,
		logger:       cfg.Logger,
	}
}

type phoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// VerifyPatient handles POST /tools/verify-patient.
func (h *ToolsHandler) VerifyPatient(w http.ResponseWriter, r *http.Request) {
	serveTool(h, w, r, ToolVerifyPatient, func(ctx context.Context, req phoneRequest) patients.PatientResult {
		return h.patients.Verify(ctx, req.Phone)
	})
}

// CreatePatient handles POST /tools/create-patient.
func (h *ToolsHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	serveTool(h, w, r, ToolCreatePatient, h.patients.Create)
}

// CheckAvailability handles POST /tools/check-availability.
func (h *ToolsHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	serveTool(h, w, r, ToolCheckAvailable, h.appointments.CheckAvailability)
}

// BookAppointment handles POST /tools/book-dentist-appointment.
func (h *ToolsHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	serveTool(h, w, r, ToolBookAppointment, h.appointments.Book)
}

// ListAppointments handles POST /tools/get-patient-appointments.
func (h *ToolsHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	serveTool(h, w, r, ToolListAppointment, func(ctx context.Context, req phoneRequest) appointments.ListResult {
		return h.appointments.ListForPatient(ctx, req.Phone)
	})
}

// CancelBooking handles POST /tools/cancel-booking.
func (h *ToolsHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	serveTool(h, w, r, ToolCancelBooking, h.appointments.Cancel)
}

type toolResult interface {
	Outcome() outcome.Result
}

// serveTool decodes and validates the body into Req, runs call and writes
// the result. Only a body that cannot be decoded or lacks required fields
// produces a non-200 answer.
func serveTool[Req any, Res toolResult](h *ToolsHandler, w http.ResponseWriter, r *http.Request, tool string, call func(context.Context, Req) Res) {
	start := time.Now()
	var req Req
	if err := decodeToolBody(w, r, &req); err != nil {
		h.logger.Warn("tool request rejected", "tool", tool, "error", err)
		h.observe(tool, string(outcome.StatusError), start)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error processing %s: %v", tool, err))
		return
	}

	res := call(r.Context(), req)
	result := res.Outcome()
	status := result.Status
	if result.IsError() {
		h.logger.Error("tool call errored", "tool", tool, "message", result.Message)
	} else {
		h.logger.Info("tool call handled", "tool", tool, "status", status)
	}
	h.observe(tool, string(status), start)
	writeJSON(w, http.StatusOK, res)
}

func (h *ToolsHandler) observe(tool, status string, start time.Time) {
	if h.recorder == nil {
		return
	}
	h.recorder.ObserveTool(tool, status, time.Since(start).Seconds())
}

func decodeToolBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToolBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return describeValidation(validate.Struct(dst))
}
