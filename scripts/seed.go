package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/adapters/cache"
	"github.com/zatekoja/workshopbooking/internal/adapters/database"
	"github.com/zatekoja/workshopbooking/internal/adapters/events"
	"github.com/zatekoja/workshopbooking/internal/application/services"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/redis"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/observability"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	"github.com/zatekoja/workshopbooking/pkg/config"
)

// Grants or revokes the admin flag for an existing account, and optionally
// books demo dates for it in the current window. Role changes made here
// bypass the API, so the first admin can be created.
func main() {
	userID := flag.String("user", "", "account id (UUID) to update")
	revoke := flag.Bool("revoke", false, "clear the admin flag instead of setting it")
	demo := flag.Bool("demo-dates", false, "also book the first selectable dates of the current window")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("workshop-seed", cfg.Env)

	if _, err := uuid.Parse(*userID); err != nil {
		log.Error().Str("user", *userID).Msg("-user must be a UUID")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	// Role changes go through RoleService so a cached flag is dropped and
	// open event streams hear about it.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient, err := redis.NewClient(ctx, &cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, cached roles expire after ROLE_CACHE_TTL")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
	}

	roles := services.NewRoleService(database.NewRoleAdapter(pgClient), cacheProvider, eventBus,
		cfg.Identity.RoleCacheTTL, cfg.Identity.RoleLookupWait, nil)
	if err := roles.SetAdmin(ctx, *userID, !*revoke); err != nil {
		log.Fatal().Err(err).Msg("failed to update role")
	}
	log.Info().Str("user_id", *userID).Bool("is_admin", !*revoke).Msg("role updated")

	if !*demo {
		return
	}

	loc, err := time.LoadLocation(cfg.Calendar.Location)
	if err != nil {
		loc = time.UTC
	}
	rule := calendar.RuleThuFriSat
	if cfg.Calendar.ExcludeFirstSaturday {
		rule = calendar.RuleThuFriSatExceptFirstSaturday
	}

	now := time.Now()
	var claims []*entities.CalendarDate
	for _, day := range calendar.TwoWeekWindow(calendar.Today(now, loc), rule) {
		if !day.IsSelectable || len(claims) == calendar.MaxSelectedDates/2 {
			continue
		}
		claims = append(claims, &entities.CalendarDate{UserID: *userID, Date: day.Date, CreatedAt: now})
	}

	if err := database.NewCalendarDateAdapter(pgClient).CreateMany(ctx, claims); err != nil {
		log.Fatal().Err(err).Msg("failed to seed demo dates")
	}
	log.Info().Int("dates", len(claims)).Msg("demo dates booked")
}
