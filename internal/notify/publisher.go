// Package notify publishes booking lifecycle events. Publishing is best
// effort: a failed event never rolls back or fails the booking itself.
package notify

import (
	"context"
	"time"

	"termin/internal/notify/events"
	"termin/pkg/kafka"
	"termin/pkg/model"
)

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	msg := kafka.NewMessage().
		WithKey(booking.StartTime.Format(time.RFC3339)).
		WithValue(events.BookingCreated{
			BookingID: booking.ID,
			Email:     booking.Email,
			FirstName: booking.FirstName,
			LastName:  booking.LastName,
			Start:     booking.StartTime,
			End:       booking.EndTime,
		}).
		WithEventType(events.TypeBookingCreated).
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
