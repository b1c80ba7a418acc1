// Package events defines the wire contract between the booking API and
// the notifier worker.
package events

import "time"

const (
	TopicBookings = "termin.bookings"
	DLQNotifier   = "dlq-notifier"

	TypeBookingCreated = "booking.created"
)

// BookingCreated carries enough for both confirmation and admin mails.
type BookingCreated struct {
	BookingID string    `json:"booking_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}
