package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/badge"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/pricing"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New("storefront-api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		logger.Fatal("invalid TAX_RATE", zap.String("value", cfg.TaxRate), zap.Error(err))
	}
	rounding, err := pricing.ParsePolicy(cfg.TaxRounding)
	if err != nil {
		logger.Fatal("invalid TAX_ROUNDING", zap.Error(err))
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	if err := store.EnsureSchema(db); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	productStore := store.NewPostgresProductStore(db)
	orderStore := store.NewPostgresOrderStore(db)
	userStore := store.NewPostgresUserStore(db)

	var cartStore cart.Store
	switch cfg.CartBackend {
	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Fatal("failed to load AWS config", zap.Error(err))
		}
		cartStore = store.NewDynamoCartStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoCartTable)
		logger.Info("cart backend: DynamoDB", zap.String("table", cfg.DynamoCartTable))
	default:
		cartStore = store.NewPostgresCartStore(db)
		logger.Info("cart backend: PostgreSQL")
	}

	// Cart mutations fan out to the in-process badge signal and, when
	// brokers are configured, to Kafka for the notifier service.
	mutationSignal := badge.NewSignal()
	notifiers := []cart.Notifier{mutationSignal}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		notifiers = append(notifiers, producer)
		logger.Info("publishing cart events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)

	productSvc := product.NewService(productStore)
	cartSvc := cart.NewService(cartStore, productStore, notifiers...)
	orderSvc := order.NewService(orderStore, productStore, taxRate, rounding)
	userSvc := user.NewService(userStore, tokens)

	var counts api.BadgeCounts
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		counts = cache.NewCountCache(redisClient, time.Hour)
		logger.Info("badge count cache: Redis")
	}

	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(productSvc, cartSvc, orderSvc, counts, logger),
		AuthHandlers: api.NewAuthHandlers(userSvc, logger),
		Tokens:       tokens,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
