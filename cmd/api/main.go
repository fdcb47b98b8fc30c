package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/adapters/cache"
	"github.com/zatekoja/workshopbooking/internal/adapters/database"
	"github.com/zatekoja/workshopbooking/internal/adapters/events"
	"github.com/zatekoja/workshopbooking/internal/adapters/providers/identity"
	"github.com/zatekoja/workshopbooking/internal/api/handlers"
	"github.com/zatekoja/workshopbooking/internal/api/routes"
	"github.com/zatekoja/workshopbooking/internal/application/loaders"
	"github.com/zatekoja/workshopbooking/internal/application/services"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/redis"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/observability"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	"github.com/zatekoja/workshopbooking/pkg/config"
	"github.com/zatekoja/workshopbooking/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	pgClient.SetMetrics(metrics)

	// Redis backs the role cache, draft selections and session events. The
	// service keeps working on in-process fallbacks without it, but those are
	// not shared between instances.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		memCache := cache.NewMemoryAdapter()
		memCache.StartSweeper(ctx, time.Minute)
		cacheProvider = memCache
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("connected to Redis")
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}()

	// Adapters
	dateRepo := database.NewCalendarDateAdapter(pgClient)
	slotRepo := database.NewTimeSlotAdapter(pgClient)
	roleRepo := database.NewRoleAdapter(pgClient)
	identityProvider := identity.NewGoTrueAdapter(&cfg.Identity)

	// Services
	loc, _ := time.LoadLocation(cfg.Calendar.Location)
	rule := calendar.RuleThuFriSat
	if cfg.Calendar.ExcludeFirstSaturday {
		rule = calendar.RuleThuFriSatExceptFirstSaturday
	}

	syncer := services.NewSyncer(retry.FetchConfig(), metrics)
	roleService := services.NewRoleService(roleRepo, cacheProvider, eventBus,
		cfg.Identity.RoleCacheTTL, cfg.Identity.RoleLookupWait, metrics)
	calendarService := services.NewCalendarService(dateRepo, slotRepo, identityProvider, cacheProvider, syncer,
		services.CalendarOptions{
			Rule:         rule,
			Location:     loc,
			MaxDates:     cfg.Calendar.MaxSelectedDates,
			SelectionTTL: cfg.Calendar.SelectionTTL,
		})
	timeSlotService := services.NewTimeSlotService(slotRepo, syncer)
	userService := services.NewUserService(identityProvider, roleRepo, roleService, dateRepo, slotRepo,
		syncer, cfg.Calendar.UserPageSize)

	sessionStore := services.NewSessionStore(identityProvider, roleService, calendarService, eventBus)
	if err := sessionStore.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start session store")
	}
	defer sessionStore.Close()

	// Handlers
	sseHandler := handlers.NewSSEHandler(sessionStore)
	router := routes.NewRouter(
		handlers.NewAuthHandler(sessionStore, cfg.Env != "development"),
		handlers.NewCalendarHandler(calendarService),
		handlers.NewTimeSlotHandler(timeSlotService),
		handlers.NewAdminHandler(userService, calendarService),
		handlers.NewViewHandler(sessionStore, calendarService, userService, timeSlotService),
		sseHandler,
		handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"database": pgClient.Ping,
			"cache": func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Ping(ctx)
			},
		}).WithStat("sse_clients", sseHandler.GetClientCount),
		sessionStore,
		roleService,
		func() *loaders.Loaders { return loaders.NewLoaders(roleRepo, identityProvider) },
		routes.Options{
			Logger:            log.Logger,
			AllowedOrigins:    cfg.CORS.AllowedOrigins,
			AuthPerMinute:     cfg.RateLimit.AuthPerMinute,
			AuthBurst:         cfg.RateLimit.AuthBurst,
			TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		},
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: /api/auth/events streams for the life of the session.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	router.Close()

	log.Info().Msg("server stopped")
}
