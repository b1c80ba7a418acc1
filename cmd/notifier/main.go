package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"termin/internal/notify/events"
	"termin/internal/notify/mailer"
	"termin/pkg/config"
	"termin/pkg/kafka"
	kafka_config "termin/pkg/kafka/config"
)

const consumerGroup = "termin-notifier"

func main() {
	cfg := config.Load("termin-notifier")

	if err := cfg.ValidateSMTP(); err != nil {
		cfg.Log.Fatal("SMTP configuration invalid", "error", err)
	}

	mail := mailer.New(cfg)
	kafkaCfg := kafka_config.Load()

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		events.TopicBookings,
		consumerGroup,
		events.DLQNotifier,
		bookingCreatedHandler(cfg, mail),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Notifier started", "topic", events.TopicBookings, "group", consumerGroup)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Notifier stopped gracefully")
}

// bookingCreatedHandler mails the requester and the admin for every
// booking.created event. Unknown event types are acknowledged and skipped
// so a producer rollout with new types never stalls the group.
func bookingCreatedHandler(cfg *config.Config, mail *mailer.Mailer) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.GetEventType() != events.TypeBookingCreated {
			cfg.Log.Warn("Skipping unknown event type",
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
			)
			return nil
		}

		var event events.BookingCreated
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		if err := mail.SendConfirmation(event.Email, event.Start, event.End); err != nil {
			return err
		}

		if err := mail.SendAdminAlert(event.Email, event.Start, event.End); err != nil {
			// The requester mail went out; an undeliverable admin copy is
			// logged, not retried.
			cfg.Log.Error("Failed to send admin alert",
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		cfg.Log.Info("Booking notification sent",
			"event_id", msg.GetEventID(),
			"email", event.Email,
			"start", event.Start,
		)
		return nil
	}
}
