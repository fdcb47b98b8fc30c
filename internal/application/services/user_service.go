package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/application/loaders"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// UserService backs the admin user pages
type UserService struct {
	identity providers.IdentityProvider
	roleRepo repositories.RoleRepository
	roles    *RoleService
	dates    repositories.CalendarDateRepository
	slots    repositories.TimeSlotRepository
	syncer   *Syncer
	pageSize int
}

// NewUserService creates a new user service listing pageSize users per page
func NewUserService(
	identity providers.IdentityProvider,
	roleRepo repositories.RoleRepository,
	roles *RoleService,
	dates repositories.CalendarDateRepository,
	slots repositories.TimeSlotRepository,
	syncer *Syncer,
	pageSize int,
) *UserService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &UserService{
		identity: identity,
		roleRepo: roleRepo,
		roles:    roles,
		dates:    dates,
		slots:    slots,
		syncer:   syncer,
		pageSize: pageSize,
	}
}

// ListUsers returns one 1-based page of users with their admin flags.
// HasNext is set only when the page came back full.
func (s *UserService) ListUsers(ctx context.Context, page int) (*entities.UserPage, error) {
	if page < 1 {
		page = 1
	}

	identities, err := Fetch(ctx, s.syncer, "users", func(ctx context.Context) ([]entities.Identity, error) {
		return s.identity.ListUsers(ctx, page, s.pageSize)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(identities))
	for i, u := range identities {
		ids[i] = u.ID
	}
	flags, err := s.adminFlags(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]entities.UserWithRole, len(identities))
	for i, u := range identities {
		users[i] = entities.UserWithRole{Identity: u, IsAdmin: flags[i]}
	}

	return &entities.UserPage{
		Users:   users,
		Page:    page,
		PerPage: s.pageSize,
		HasNext: len(identities) == s.pageSize,
	}, nil
}

// adminFlags batches the role lookups through the request loader when one is
// attached, falling back to a single query
func (s *UserService) adminFlags(ctx context.Context, ids []string) ([]bool, error) {
	flags := make([]bool, len(ids))
	if len(ids) == 0 {
		return flags, nil
	}

	if l := loaders.For(ctx); l != nil {
		values, errs := l.RoleLoader.LoadMany(ctx, ids)()
		for _, err := range errs {
			if err != nil {
				return nil, apperrors.NewNetworkError("failed to load user roles", err)
			}
		}
		copy(flags, values)
		return flags, nil
	}

	roles, err := Fetch(ctx, s.syncer, "user roles", func(ctx context.Context) (map[string]*entities.UserRole, error) {
		return s.roleRepo.GetByUserIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if r, ok := roles[id]; ok {
			flags[i] = r.IsAdmin
		}
	}
	return flags, nil
}

// GetUserDetail returns one user with the dates and slots they booked
func (s *UserService) GetUserDetail(ctx context.Context, userID string) (*entities.UserDetail, error) {
	user, err := Fetch(ctx, s.syncer, "user", func(ctx context.Context) (*entities.Identity, error) {
		return s.identity.GetUserByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	dates, err := Fetch(ctx, s.syncer, "calendar dates", func(ctx context.Context) ([]*entities.CalendarDate, error) {
		return s.dates.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	slots, err := Fetch(ctx, s.syncer, "time slots", func(ctx context.Context) ([]*entities.TimeSlot, error) {
		return s.slots.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	detail := &entities.UserDetail{
		User:      entities.UserWithRole{Identity: *user, IsAdmin: s.roles.IsAdmin(ctx, userID)},
		Dates:     make([]entities.CalendarDate, 0, len(dates)),
		TimeSlots: make([]entities.TimeSlot, 0, len(slots)),
	}
	for _, d := range dates {
		detail.Dates = append(detail.Dates, *d)
	}
	for _, slot := range slots {
		detail.TimeSlots = append(detail.TimeSlots, *slot)
	}
	return detail, nil
}

// SetAdmin changes a user's admin flag. Admins cannot demote themselves.
func (s *UserService) SetAdmin(ctx context.Context, actorID, userID string, isAdmin bool) error {
	if actorID == userID && !isAdmin {
		return apperrors.NewConflictError("You cannot remove your own admin role")
	}
	if err := s.roles.SetAdmin(ctx, userID, isAdmin); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("actor_id", actorID).Str("user_id", userID).Bool("is_admin", isAdmin).Msg("user role changed")
	return nil
}
