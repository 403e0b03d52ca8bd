package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/fornodoro/backend/api/routes"
	authsvc "github.com/fornodoro/backend/internal/auth"
	"github.com/fornodoro/backend/internal/banners"
	"github.com/fornodoro/backend/internal/builder"
	"github.com/fornodoro/backend/internal/cart"
	"github.com/fornodoro/backend/internal/catalog"
	checkoutsvc "github.com/fornodoro/backend/internal/checkout"
	"github.com/fornodoro/backend/internal/coupons"
	"github.com/fornodoro/backend/internal/loyalty"
	"github.com/fornodoro/backend/internal/notifications"
	"github.com/fornodoro/backend/internal/orders"
	"github.com/fornodoro/backend/internal/payments/pix"
	"github.com/fornodoro/backend/internal/relay"
	"github.com/fornodoro/backend/internal/settings"
	"github.com/fornodoro/backend/internal/users"
	"github.com/fornodoro/backend/pkg/auth/session"
	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/migrate"
	"github.com/fornodoro/backend/pkg/outbox"
	"github.com/fornodoro/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	builderService, err := builder.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create builder service", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Store.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartStore, builderService, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponsService, err := coupons.NewService(coupons.NewRepository(dbClient.DB()), cfg.Coupon)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}

	loyaltyService, err := loyalty.NewService(loyalty.NewRepository(dbClient.DB()), cfg.Loyalty)
	if err != nil {
		logg.Error(context.Background(), "failed to create loyalty service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	pixGenerator, err := pix.NewGenerator(cfg.Pix)
	if err != nil {
		logg.Error(context.Background(), "failed to create pix generator", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		cartService,
		couponsService,
		loyaltyService,
		settingsService,
		ordersRepo,
		dbClient,
		outboxService,
		pixGenerator,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService, loyaltyService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	bannersService, err := banners.NewService(banners.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create banners service", err)
		os.Exit(1)
	}

	relayService, err := relay.NewService(settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create relay service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			usersRepo,
			catalogService,
			builderService,
			cartService,
			checkoutService,
			ordersService,
			loyaltyService,
			notificationsService,
			couponsService,
			bannersService,
			settingsService,
			relayService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
