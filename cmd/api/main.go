package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-billing/internal/config"
	"go-pos-billing/internal/events"
	"go-pos-billing/internal/handler"
	"go-pos-billing/internal/repository"
	"go-pos-billing/internal/service"
	"go-pos-billing/internal/ws"
	"go-pos-billing/pkg/database"
	"go-pos-billing/pkg/jwt"
	"go-pos-billing/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config and logging
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db, cfg); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}
	if cfg.Seed {
		if _, err := database.Seed(db); err != nil {
			log.Warn().Err(err).Msg("sample products not seeded")
		}
	}

	// 3. Setup WebSocket Hub and event publishers
	wsHub := ws.NewHub()
	go wsHub.Run()

	publishers := events.Multi{events.NewHubPublisher(wsHub)}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publishers = append(publishers, kafkaPub)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka events enabled")
	}

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	billRepo := repository.NewBillRepo(db)
	cartRepo, rdb := newCartRepo(cfg, db)

	policy := service.DiscountPolicy{Threshold: cfg.AutoDiscountThreshold, AutoPercent: cfg.AutoDiscountPercent}
	catalogService := service.NewCatalogService(productRepo, db, publishers)
	billingService := service.NewBillingService(productRepo, billRepo, db, publishers, policy)
	cartService := service.NewCartService(cartRepo, productRepo, billingService)
	dashService := service.NewDashboardService(billRepo, cfg.LowStockThreshold)

	signer := jwt.NewSigner(cfg.JWTSecret, cfg.CartTokenTTL)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Cart-Token",
	}))

	// 6. Routes
	handler.Register(app.Group("/api/v1"), handler.Handlers{
		Product:   handler.NewProductHandler(catalogService),
		Cart:      handler.NewCartHandler(cartService, signer, cfg.CartTokenTTL),
		Bill:      handler.NewBillHandler(billingService, cfg.ShopName),
		Dashboard: handler.NewDashboardHandler(dashService),
	}, signer)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Int("ws_clients", wsHub.ClientCount()).Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Warn().Err(err).Msg("kafka writer close failed")
		}
	}
	if rdb != nil {
		rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info().Msg("Server exited")
}

// newCartRepo picks the cart store. The redis client is returned so it
// can be closed on shutdown; it is nil for the db backend.
func newCartRepo(cfg config.Config, db *gorm.DB) (repository.CartRepository, *redis.Client) {
	if cfg.CartBackend != config.CartBackendRedis {
		return repository.NewCartRepo(db), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CartTTL).Msg("redis cart store enabled")
	return repository.NewRedisCartRepo(rdb, cfg.CartTTL), rdb
}
