package main

import (
	"aurabook/internal/entitlements"
	entitlementsrepo "aurabook/internal/entitlements/repository"
	"aurabook/internal/giftcards/handler"
	"aurabook/internal/giftcards/repository"
	"aurabook/internal/giftcards/service"
	"aurabook/internal/giftcards/validator"
	"aurabook/pkg/app"
	"aurabook/pkg/clock"
	"aurabook/pkg/codegen"
	"aurabook/pkg/config"
	"aurabook/pkg/events"
)

const ServiceName = "giftcards"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Gift Cards service")
	giftCardService, publisher := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(handler.NewGiftCardHandler(giftCardService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.GiftCardService, events.Publisher) {
	publisher := newPublisher(cfg)

	gate := entitlements.NewGate(entitlementsrepo.NewMongoTenantRepository(cfg), cfg.Log)

	giftCardService := service.NewGiftCardService(
		repository.NewMongoGiftCardRepository(cfg),
		repository.NewMongoTransactionRepository(cfg),
		gate,
		validator.NewGiftCardValidator(cfg.Log),
		codegen.NewGiftCardCodeGenerator(),
		publisher,
		clock.System(),
		cfg,
	)

	cfg.Log.Info("Gift Cards service initialized", "database", cfg.MongoDatabaseName)
	return giftCardService, publisher
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
