package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// RoleService answers "is this user an admin" from user_roles, the single
// source of truth for the flag. Answers are cached for a short TTL.
type RoleService struct {
	repo    repositories.RoleRepository
	cache   providers.CacheProvider
	bus     providers.EventBus
	ttl     time.Duration
	wait    time.Duration
	metrics *observability.Metrics
}

// NewRoleService creates a new role service. wait bounds a single lookup.
func NewRoleService(
	repo repositories.RoleRepository,
	cache providers.CacheProvider,
	bus providers.EventBus,
	ttl, wait time.Duration,
	metrics *observability.Metrics,
) *RoleService {
	return &RoleService{
		repo:    repo,
		cache:   cache,
		bus:     bus,
		ttl:     ttl,
		wait:    wait,
		metrics: metrics,
	}
}

// IsAdmin grants only on an explicit true. A lookup error or timeout is
// logged and answered with false.
func (s *RoleService) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}

	isAdmin, err := s.Lookup(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("role lookup failed, denying admin access")
		observability.RecordRoleLookup(ctx, s.metrics, "error")
		return false
	}

	outcome := "denied"
	if isAdmin {
		outcome = "granted"
	}
	observability.RecordRoleLookup(ctx, s.metrics, outcome)
	return isAdmin
}

// Lookup returns the admin flag or the error that prevented reading it
func (s *RoleService) Lookup(ctx context.Context, userID string) (bool, error) {
	if s.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.wait)
		defer cancel()
	}

	key := providers.RoleCacheKey(userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			if v, perr := strconv.ParseBool(string(cached)); perr == nil {
				observability.RecordCacheHit(ctx, s.metrics, providers.CacheKeyRolePrefix)
				return v, nil
			}
		} else if !errors.Is(err, providers.ErrCacheMiss) {
			log.Ctx(ctx).Debug().Err(err).Msg("role cache unavailable")
		}
		observability.RecordCacheMiss(ctx, s.metrics, providers.CacheKeyRolePrefix)
	}

	isAdmin, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, apperrors.NewNetworkError("role lookup timed out", ctxErr)
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, []byte(strconv.FormatBool(isAdmin)), providers.TTLSeconds(s.ttl)); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("failed to cache role")
		}
	}
	return isAdmin, nil
}

// SetAdmin writes the flag, drops the cached answer and broadcasts the change
func (s *RoleService) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	if userID == "" {
		return apperrors.NewValidationError("user id is required")
	}
	if err := s.repo.Upsert(ctx, &entities.UserRole{UserID: userID, IsAdmin: isAdmin}); err != nil {
		return err
	}
	s.Invalidate(ctx, userID)

	if s.bus != nil {
		event := entities.NewSessionEvent(entities.SessionEventRoleChanged, userID, isAdmin)
		for _, channel := range []string{providers.EventChannelSessions, providers.GetUserChannel(userID)} {
			if err := s.bus.Publish(ctx, channel, event); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish role change")
			}
		}
	}
	return nil
}

// Invalidate drops the cached flag of a user
func (s *RoleService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, providers.RoleCacheKey(userID)); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("user_id", userID).Msg("failed to invalidate role cache")
	}
}
