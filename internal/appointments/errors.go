package appointments

import "errors"

var (
	// ErrNoPriorVisit indicates the patient has never had an appointment.
	ErrNoPriorVisit = errors.New("appointments: no prior visit")
	// ErrSlotTaken indicates another Scheduled appointment holds the dentist's slot.
	ErrSlotTaken = errors.New("appointments: slot already booked")
	// ErrUnknownReference indicates the dentist or patient does not exist.
	ErrUnknownReference = errors.New("appointments: unknown dentist or patient")
)
