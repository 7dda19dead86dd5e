package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"ragestate/internal/adapter/api"
	"ragestate/internal/adapter/api/handler"
	apimiddleware "ragestate/internal/adapter/api/middleware"
	"ragestate/internal/adapter/api/router"
	"ragestate/internal/adapter/repository"
	"ragestate/internal/domain/service"
	"ragestate/internal/infrastructure/firebase"
	"ragestate/internal/infrastructure/websocket"
	"ragestate/internal/job"
	"ragestate/internal/usecase"
	"ragestate/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Service account from the environment in production, file path locally
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./serviceAccountKey.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	summaryRepo := repository.NewFirestoreSummaryRepository(firestoreClient)
	postRepo := repository.NewFirestorePostRepository(firestoreClient)
	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)
	promoRepo := repository.NewFirestorePromoRepository(firestoreClient)

	authClient := firebase.NewAuthClient(fbAuth)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	moderation := service.NewKeywordModerationService(nil)
	paymentGateway := service.NewStripePaymentService(cfg.StripeSecretKey)
	catalogService := service.NewShopifyCatalogService(
		cfg.ShopifyDomain,
		cfg.ShopifyToken,
		time.Duration(cfg.CatalogCacheTTL)*time.Second,
	)

	projector := usecase.NewSummaryProjector(summaryRepo, userRepo, chatRepo, cfg.FanoutMaxAttempts)
	projector.Run(ctx)

	chatUseCase := usecase.NewChatUseCase(chatRepo, summaryRepo, userRepo, moderation, projector, wsManager)
	feedUseCase := usecase.NewFeedUseCase(postRepo, userRepo, moderation, wsManager)
	checkoutUseCase := usecase.NewCheckoutUseCase(
		orderRepo,
		promoRepo,
		userRepo,
		paymentGateway,
		cfg.TaxRate,
		cfg.ShippingFlatRate,
		cfg.StripeMinAmount,
	)
	catalogUseCase := usecase.NewCatalogUseCase(catalogService)

	jobManager := job.NewManager(job.NewCounterReconcileJob(postRepo, 100))
	if err := jobManager.RegisterJobs(); err != nil {
		log.Fatalf("Failed to register background jobs: %v", err)
	}
	jobManager.Start()
	defer jobManager.Stop()

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	router.Setup(e, router.Handlers{
		Chat:      handler.NewChatHandler(chatUseCase),
		Feed:      handler.NewFeedHandler(feedUseCase),
		Checkout:  handler.NewCheckoutHandler(checkoutUseCase),
		Catalog:   handler.NewCatalogHandler(catalogUseCase),
		Health:    handler.NewHealthHandler(authClient, projector),
		WebSocket: handler.NewWebSocketHandler(wsManager, authClient, chatUseCase),
	}, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
