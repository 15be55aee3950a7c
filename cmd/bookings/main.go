package main

import (
	"aurabook/internal/availability"
	"aurabook/internal/bookings/handler"
	"aurabook/internal/bookings/repository"
	"aurabook/internal/bookings/service"
	"aurabook/internal/bookings/validator"
	catalogrepo "aurabook/internal/catalog/repository"
	"aurabook/internal/entitlements"
	entitlementsrepo "aurabook/internal/entitlements/repository"
	"aurabook/pkg/app"
	"aurabook/pkg/clock"
	"aurabook/pkg/config"
	"aurabook/pkg/events"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	bookingService, publisher := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.BookingService, events.Publisher) {
	publisher := newPublisher(cfg)

	gate := entitlements.NewGate(entitlementsrepo.NewMongoTenantRepository(cfg), cfg.Log)

	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewMongoSlotLockRepository(cfg),
		catalogrepo.NewMongoStaffRepository(cfg),
		catalogrepo.NewMongoServiceRepository(cfg),
		gate,
		availability.NewCalculator(cfg.SlotGranularityMin),
		validator.NewBookingValidator(cfg.Log),
		publisher,
		clock.System(),
		cfg,
	)

	cfg.Log.Info("Bookings service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, publisher
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Warn("No Kafka brokers configured, events will be dropped")
		return events.NopPublisher{}
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	return publisher
}
