package main

import (
	bookingshandler "vntrips/internal/bookings/handler"
	bookingsrepo "vntrips/internal/bookings/repository"
	bookingssvc "vntrips/internal/bookings/service"
	bookingsvalidator "vntrips/internal/bookings/validator"
	categorieshandler "vntrips/internal/categories/handler"
	categoriesrepo "vntrips/internal/categories/repository"
	categoriessvc "vntrips/internal/categories/service"
	categoriesvalidator "vntrips/internal/categories/validator"
	consultationshandler "vntrips/internal/consultations/handler"
	consultationsrepo "vntrips/internal/consultations/repository"
	consultationssvc "vntrips/internal/consultations/service"
	consultationsvalidator "vntrips/internal/consultations/validator"
	productshandler "vntrips/internal/products/handler"
	productsrepo "vntrips/internal/products/repository"
	productssvc "vntrips/internal/products/service"
	productsvalidator "vntrips/internal/products/validator"
	uploadshandler "vntrips/internal/uploads/handler"
	"vntrips/pkg/app"
	"vntrips/pkg/config"
	"vntrips/pkg/contracts"
	"vntrips/pkg/events"
)

const ServiceName = "vntrips-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting vntrips API service")

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher := initPublisher(cfg)
	defer publisher.Close()

	handlers := initHandlers(cfg, publisher)

	application := app.NewApplication()
	application.SetApp(cfg, handlers...)
	application.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No Kafka brokers configured; lifecycle events disabled")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	cfg.Log.Info("Kafka publisher initialized",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaEventsTopic,
	)
	return publisher
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	categoryRepo := categoriesrepo.NewMongoCategoryRepository(cfg)
	productRepo := productsrepo.NewMongoProductRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	consultationRepo := consultationsrepo.NewMongoConsultationRepository(cfg)

	// Image cleanup is best-effort and disabled entirely without storage.
	var categoryImages categoriessvc.ImageStore
	var productImages productssvc.ImageStore
	if cfg.StorageEndpoint != "" {
		cfg.SetStorage()
		categoryImages = cfg.Client.Storage
		productImages = cfg.Client.Storage
	}

	categoryService := categoriessvc.NewCategoryService(
		categoryRepo,
		productRepo,
		categoryImages,
		categoriesvalidator.NewCategoryValidator(),
		cfg,
	)
	productService := productssvc.NewProductService(
		productRepo,
		categoryRepo,
		productImages,
		productsvalidator.NewProductValidator(),
		cfg,
	)
	bookingService := bookingssvc.NewBookingService(
		bookingRepo,
		productRepo,
		categoryRepo,
		publisher,
		bookingsvalidator.NewBookingValidator(),
		cfg,
	)
	consultationService := consultationssvc.NewConsultationService(
		consultationRepo,
		publisher,
		consultationsvalidator.NewConsultationValidator(),
		cfg,
	)

	handlers := []contracts.Handler{
		categorieshandler.NewCategoryHandler(categoryService, cfg),
		productshandler.NewProductHandler(productService, cfg),
		bookingshandler.NewBookingHandler(bookingService, cfg),
		consultationshandler.NewConsultationHandler(consultationService, cfg),
	}
	if cfg.Client.Storage != nil {
		handlers = append(handlers, uploadshandler.NewUploadHandler(cfg.Client.Storage, cfg))
	} else {
		cfg.Log.Warn("Object storage not configured; upload endpoints disabled")
	}

	cfg.Log.Info("Domain services initialized")
	return handlers
}
