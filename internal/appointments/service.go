// Package appointments implements slot search, booking, cancellation and
// listing for the voice tools.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dental-voice-api/internal/notify"
	"github.com/wolfman30/dental-voice-api/internal/outcome"
	"github.com/wolfman30/dental-voice-api/internal/patients"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

var appointmentsTracer = otel.Tracer("dental.internal.appointments")

// Caller-facing messages.
const (
	MsgNoDentists      = "No dentists are configured."
	MsgNoSlots         = "No available slots found."
	MsgInvalidDate     = "Invalid date. Use YYYY-MM-DD, today or tomorrow."
	MsgInvalidTime     = "Invalid appointment time. Use HH:MM."
	MsgBookFailed      = "Failed to book the appointment in the database."
	MsgSlotTaken       = "That slot was just taken. Please check availability again."
	MsgPatientNotFound = "No patient found with this phone number."
	MsgNothingToCancel = "Could not find a scheduled appointment on that date to cancel."
	MsgCancelled       = "The appointment has been successfully cancelled."
	MsgNoUpcoming      = "No upcoming appointments found for this patient."
)

// PatientDirectory resolves patients for cancellation, listing and
// notifications. patients.Repository satisfies it.
type PatientDirectory interface {
	GetByPhone(ctx context.Context, phone string) (*patients.Patient, error)
	GetByID(ctx context.Context, id int64) (*patients.Patient, error)
}

// Notifier dispatches best-effort messages. *notify.Dispatcher satisfies it.
type Notifier interface {
	Dispatch(ctx context.Context, n notify.Notification)
}

// Service runs the appointment tools.
type Service struct {
	store    Store
	patients PatientDirectory
	notifier Notifier
	logger   *logging.Logger
	loc      *time.Location
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets where confirmations and cancellations are sent.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLocation sets the clinic timezone used for "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, directory PatientDirectory, logger *logging.Logger, opts ...Option) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if directory == nil {
		panic("appointments: patient directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		store:    store,
		patients: directory,
		logger:   logger,
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// AvailabilityRequest mirrors the check_availability tool arguments.
type AvailabilityRequest struct {
	AppointmentDate      string `json:"appointment_date" validate:"required"`
	PatientID            *int64 `json:"patient_id,omitempty"`
	AppointmentStartTime string `json:"appointment_start_time,omitempty"`
}

// EarliestSlot is the date and start time of a found slot.
type EarliestSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// AvailabilityResult is the check_availability response.
type AvailabilityResult struct {
	outcome.Result
	EarliestSlot *EarliestSlot `json:"earliest_slot,omitempty"`
	DentistID    int64         `json:"dentist_id,omitempty"`
	DentistName  string        `json:"dentist_name,omitempty"`
}

// CheckAvailability finds the earliest free slot from the requested date,
// trying the patient's last dentist first.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) AvailabilityResult {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.check_availability")
	defer span.End()
	span.SetAttributes(attribute.String("dental.appointment_date", req.AppointmentDate))

	now := s.clock()
	start, err := ResolveDate(req.AppointmentDate, now)
	if err != nil {
		return AvailabilityResult{Result: outcome.Failed(MsgInvalidDate)}
	}

	var fixed string
	if strings.TrimSpace(req.AppointmentStartTime) != "" {
		if fixed, err = NormalizeTime(req.AppointmentStartTime); err != nil {
			return AvailabilityResult{Result: outcome.Failed(MsgInvalidTime)}
		}
		span.SetAttributes(attribute.String("dental.fixed_time", fixed))
	}

	dentists, err := s.store.ListDentists(ctx)
	if err != nil {
		return AvailabilityResult{Result: s.fail(span, "list dentists", err)}
	}
	if len(dentists) == 0 {
		return AvailabilityResult{Result: outcome.Failed(MsgNoDentists)}
	}

	var preferred int64
	if req.PatientID != nil && *req.PatientID != 0 {
		span.SetAttributes(attribute.Int64("dental.patient_id", *req.PatientID))
		preferred, err = s.store.LastDentistForPatient(ctx, *req.PatientID)
		if err != nil && !errors.Is(err, ErrNoPriorVisit) {
			return AvailabilityResult{Result: s.fail(span, "last visit", err)}
		}
	}

	slot, err := FindEarliest(ctx, s.store, SearchOrder(dentists, preferred), SlotQuery{
		Start:     start,
		FixedTime: fixed,
		Now:       now,
	})
	if err != nil {
		return AvailabilityResult{Result: s.fail(span, "search slots", err)}
	}
	if slot == nil {
		return AvailabilityResult{Result: outcome.Failed(MsgNoSlots)}
	}

	span.SetAttributes(attribute.Int64("dental.dentist_id", slot.Dentist.ID))
	return AvailabilityResult{
		Result:       outcome.Success(""),
		EarliestSlot: &EarliestSlot{Date: slot.Date.Format(dateLayout), Time: slot.Time},
		DentistID:    slot.Dentist.ID,
		DentistName:  slot.Dentist.Name,
	}
}

// BookRequest mirrors the book_dentist_appointment tool arguments.
type BookRequest struct {
	DentistID            int64  `json:"dentist_id" validate:"required"`
	PatientID            int64  `json:"patient_id" validate:"required"`
	AppointmentDate      string `json:"appointment_date" validate:"required"`
	AppointmentStartTime string `json:"appointment_start_time" validate:"required"`
	Reason               string `json:"reason,omitempty"`
}

// BookResult is the book_dentist_appointment response.
type BookResult struct {
	outcome.Result
	AppointmentID int64 `json:"appointment_id,omitempty"`
}

// Book stores a 30 minute appointment and sends a WhatsApp confirmation.
// The confirmation never affects the result.
func (s *Service) Book(ctx context.Context, req BookRequest) BookResult {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("dental.dentist_id", req.DentistID),
		attribute.Int64("dental.patient_id", req.PatientID),
	)

	date, err := ResolveDate(req.AppointmentDate, s.clock())
	if err != nil {
		return BookResult{Result: outcome.Failed(MsgInvalidDate)}
	}
	start, err := NormalizeTime(req.AppointmentStartTime)
	if err != nil {
		return BookResult{Result: outcome.Failed(MsgInvalidTime)}
	}
	end, err := EndTime(start)
	if err != nil {
		return BookResult{Result: outcome.Failed(MsgInvalidTime)}
	}

	id, err := s.store.Insert(ctx, NewAppointment{
		DentistID: req.DentistID,
		PatientID: req.PatientID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Reason:    strings.TrimSpace(req.Reason),
	})
	switch {
	case errors.Is(err, ErrSlotTaken):
		return BookResult{Result: outcome.Failed(MsgSlotTaken)}
	case errors.Is(err, ErrUnknownReference):
		return BookResult{Result: outcome.Failed(MsgBookFailed)}
	case err != nil:
		return BookResult{Result: s.fail(span, "insert appointment", err)}
	case id == 0:
		return BookResult{Result: outcome.Failed(MsgBookFailed)}
	}

	span.SetAttributes(attribute.Int64("dental.appointment_id", id))
	s.logger.Info("appointment booked", "appointment_id", id, "dentist_id", req.DentistID, "patient_id", req.PatientID)
	s.confirmBooking(ctx, req.PatientID, date, start)

	return BookResult{
		Result:        outcome.Success(fmt.Sprintf("Appointment confirmed! Your appointment ID is %d.", id)),
		AppointmentID: id,
	}
}

func (s *Service) confirmBooking(ctx context.Context, patientID int64, date time.Time, start string) {
	if s.notifier == nil {
		return
	}
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		s.logger.Warn("booking confirmation skipped: patient lookup failed", "patient_id", patientID, "error", err)
		return
	}
	startClock, _ := time.Parse(timeLayout, start)
	s.notifier.Dispatch(ctx, notify.Notification{
		Kind:    notify.KindConfirmation,
		Phone:   p.Phone,
		Message: notify.BookingConfirmation(p.FullName, date, startClock),
	})
}

// CancelRequest mirrors the cancel_booking tool arguments.
type CancelRequest struct {
	Phone           string `json:"phone" validate:"required"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
}

// Cancel moves the caller's Scheduled appointments on the date to
// Cancelled. Patient and date are the only selector.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) outcome.Result {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("dental.appointment_date", req.AppointmentDate))

	date, err := ResolveDate(req.AppointmentDate, s.clock())
	if err != nil {
		return outcome.Failed(MsgInvalidDate)
	}

	p, err := s.patients.GetByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			return outcome.Failed(MsgPatientNotFound)
		}
		return s.fail(span, "lookup patient", err)
	}
	span.SetAttributes(attribute.Int64("dental.patient_id", p.ID))

	n, err := s.store.CancelOnDate(ctx, p.ID, date)
	if err != nil {
		return s.fail(span, "cancel appointment", err)
	}
	if n == 0 {
		return outcome.Failed(MsgNothingToCancel)
	}

	s.logger.Info("appointment cancelled", "patient_id", p.ID, "date", date.Format(dateLayout), "count", n)
	if s.notifier != nil {
		s.notifier.Dispatch(ctx, notify.Notification{
			Kind:    notify.KindCancellation,
			Phone:   p.Phone,
			Message: notify.CancellationConfirmation(p.FullName, date),
		})
	}
	return outcome.Success(MsgCancelled)
}

// UpcomingAppointment is one entry of the get_patient_appointments response.
type UpcomingAppointment struct {
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	EndTime       string `json:"end_time"`
	DentistName   string `json:"dentist_name"`
}

// ListResult is the get_patient_appointments response.
type ListResult struct {
	outcome.Result
	Appointments []UpcomingAppointment `json:"appointments,omitempty"`
}

// ListForPatient returns the caller's Scheduled appointments from today on.
func (s *Service) ListForPatient(ctx context.Context, phone string) ListResult {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.list_for_patient")
	defer span.End()

	p, err := s.patients.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			return ListResult{Result: outcome.Failed(MsgPatientNotFound)}
		}
		return ListResult{Result: s.fail(span, "lookup patient", err)}
	}
	span.SetAttributes(attribute.Int64("dental.patient_id", p.ID))

	rows, err := s.store.ListUpcoming(ctx, p.ID, truncateDay(s.clock()))
	if err != nil {
		return ListResult{Result: s.fail(span, "list upcoming", err)}
	}
	if len(rows) == 0 {
		return ListResult{Result: outcome.Failed(MsgNoUpcoming)}
	}

	out := make([]UpcomingAppointment, 0, len(rows))
	for _, row := range rows {
		out = append(out, UpcomingAppointment{
			AppointmentID: row.ID,
			Date:          row.Date.Format(dateLayout),
			Time:          row.StartTime,
			EndTime:       row.EndTime,
			DentistName:   row.DentistName,
		})
	}
	return ListResult{Result: outcome.Success(""), Appointments: out}
}

func (s *Service) fail(span trace.Span, action string, err error) outcome.Result {
	span.RecordError(err)
	span.SetStatus(codes.Error, action)
	s.logger.Error("appointments: "+action+" failed", "error", err)
	return outcome.Error(err)
}
