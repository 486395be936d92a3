package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingConfirmation(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	start := time.Date(0, 1, 1, 14, 30, 0, 0, time.UTC)
	got := BookingConfirmation("Asha Patel", date, start)
	assert.Equal(t,
		"Hello Asha Patel,\n\nYour dental appointment has been confirmed for *Monday, June 02, 2025* at *02:30 PM*.\n\nWe look forward to seeing you!",
		got)
}

func TestCancellationConfirmation(t *testing.T) {
	date := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	got := CancellationConfirmation("Asha Patel", date)
	assert.Equal(t,
		"Hello Asha Patel,\n\nThis is a confirmation that your dental appointment for *Tuesday, June 03, 2025* has been successfully cancelled.",
		got)
}
