package notify

import (
	"fmt"
	"time"
)

// Kind labels a notification for logs and metrics.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindCancellation Kind = "cancellation"
)

const (
	friendlyDateLayout = "Monday, January 02, 2006"
	friendlyTimeLayout = "03:04 PM"
)

// Notification is one outbound WhatsApp message.
type Notification struct {
	Kind    Kind
	Phone   string
	Message string
}

// BookingConfirmation builds the message sent after a booking is stored.
func BookingConfirmation(patientName string, date time.Time, start time.Time) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour dental appointment has been confirmed for *%s* at *%s*.\n\nWe look forward to seeing you!",
		patientName, date.Format(friendlyDateLayout), start.Format(friendlyTimeLayout),
	)
}

// CancellationConfirmation builds the message sent after a cancellation.
func CancellationConfirmation(patientName string, date time.Time) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThis is a confirmation that your dental appointment for *%s* has been successfully cancelled.",
		patientName, date.Format(friendlyDateLayout),
	)
}
