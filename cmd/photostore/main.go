package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mjsport/photostore/internal/cache"
	"github.com/mjsport/photostore/internal/cart"
	"github.com/mjsport/photostore/internal/catalog"
	"github.com/mjsport/photostore/internal/checkout"
	h "github.com/mjsport/photostore/internal/http"
	"github.com/mjsport/photostore/internal/notify"
	"github.com/mjsport/photostore/internal/payment/mercadopago"
	"github.com/mjsport/photostore/internal/repository"
	"github.com/mjsport/photostore/internal/webhook"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsDir    string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string

	StorageBaseURL string

	MPAccessToken string
	MPBackURLBase string
	MPNotifyURL   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "photostore"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "internal/repository/migrations"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "photostore"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		StorageBaseURL: getEnv("STORAGE_BASE_URL", ""),

		MPAccessToken: getEnv("MP_ACCESS_TOKEN", ""),
		MPBackURLBase: getEnv("MP_BACK_URL_BASE", "http://localhost:3000/checkout"),
		MPNotifyURL:   getEnv("MP_NOTIFY_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "fotos@mjsport.example.com"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("invalid %s value %q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	// Postgres holds the catalog and orders
	creds := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDir,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// MongoDB holds session carts
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cartRepo := cart.NewMongoRepository(mongoDB)

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	err = cartRepo.CreateIndexes(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	cartCache := cache.NewRedisCache(redisClient)

	mpClient := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.MPAccessToken,
		BackURLBase: cfg.MPBackURLBase,
		NotifyURL:   cfg.MPNotifyURL,
	})

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}

	catalogSvc := catalog.NewService(repo, cfg.StorageBaseURL)
	cartSvc := cart.NewService(cartRepo, cartCache)
	checkoutSvc := checkout.NewService(catalogSvc, repo, mpClient, cartSvc)
	webhookSvc := webhook.NewService(repo, mpClient, mailer)

	router := h.NewRouter(h.RouterConfig{
		CartHandler:     h.NewCartHandler(cartSvc, catalogSvc, cfg.RequestTimeout),
		CatalogHandler:  h.NewCatalogHandler(catalogSvc, cfg.RequestTimeout),
		CheckoutHandler: h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout),
		WebhookHandler:  h.NewWebhookHandler(webhookSvc, mpClient.Name(), cfg.RequestTimeout),
		RequestTimeout:  cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "photostore"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("photostore starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
