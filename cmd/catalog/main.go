package main

import (
	"aurabook/internal/catalog/handler"
	"aurabook/internal/catalog/repository"
	"aurabook/internal/catalog/service"
	"aurabook/internal/catalog/validator"
	"aurabook/internal/entitlements"
	entitlementsrepo "aurabook/internal/entitlements/repository"
	"aurabook/pkg/app"
	"aurabook/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Catalog service")
	catalogService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewCatalogHandler(catalogService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CatalogService {
	gate := entitlements.NewGate(entitlementsrepo.NewMongoTenantRepository(cfg), cfg.Log)

	catalogService := service.NewCatalogService(
		repository.NewMongoStaffRepository(cfg),
		repository.NewMongoServiceRepository(cfg),
		gate,
		validator.NewCatalogValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Catalog service initialized", "database", cfg.MongoDatabaseName)
	return catalogService
}
