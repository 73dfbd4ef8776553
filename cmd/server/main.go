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

	"github.com/bayramdkmn/ecommerce-api/internal/cache"
	h "github.com/bayramdkmn/ecommerce-api/internal/http"
	"github.com/bayramdkmn/ecommerce-api/internal/repository"
	"github.com/bayramdkmn/ecommerce-api/internal/service"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	DB              repository.Credentials
}

func loadConfig() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, errors.New("DB_PORT must be an integer")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "ecommerce"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("ecommerce-api starting...")

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	store, err := repository.NewStore(&cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := store.RunMigrations(&cfg.DB); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("connected to postgres, migrations applied")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cartCache := cache.NewRedisCache(redisClient)

	productRepo := repository.NewProductRepository(store)
	cartRepo := repository.NewCartRepository(store)
	orderStore := repository.NewOrderStore(store)
	tokenRepo := repository.NewTokenRepository(store)

	cartService := service.NewCartService(cartRepo, productRepo, cartCache)
	orderService := service.NewOrderService(orderStore, cartCache)
	productService := service.NewProductService(productRepo, productRepo)

	cartHandler := h.NewCartHandler(cartService)
	orderHandler := h.NewOrderHandler(orderService)
	productHandler := h.NewProductHandler(productService)

	router := h.NewRouter(
		cartHandler,
		orderHandler,
		productHandler,
		h.AuthMiddleware(tokenRepo),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
