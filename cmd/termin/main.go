package main

import (
	"termin/internal/booking/handler"
	"termin/internal/booking/repository"
	"termin/internal/booking/service"
	"termin/internal/booking/validator"
	"termin/internal/notify"
	"termin/internal/notify/events"
	"termin/pkg/app"
	"termin/pkg/config"
	"termin/pkg/kafka"
	kafka_config "termin/pkg/kafka/config"
)

func main() {
	cfg := config.Load("termin-api")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher := initPublisher(cfg)
	defer publisher.Close()

	bookingService := initServices(cfg, publisher)

	bookingHandler := handler.NewBookingHandler(bookingService, cfg.Log)

	application := app.NewApplication()
	application.SetApp(cfg, bookingHandler)
	application.Run()
}

func initPublisher(cfg *config.Config) notify.Publisher {
	kafkaCfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kafkaCfg, events.TopicBookings, events.DLQNotifier)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", events.TopicBookings)
	return notify.NewKafkaPublisher(producer, "termin-api")
}

func initServices(cfg *config.Config, publisher notify.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		publisher,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized")
	return bookingService
}
