package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

const userRolesTable = "user_roles"

// RoleAdapter implements RoleRepository
type RoleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRoleAdapter creates a new role adapter
func NewRoleAdapter(client *postgres.Client) repositories.RoleRepository {
	return &RoleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// IsAdmin returns the admin flag of a user; a missing row means not admin
func (a *RoleAdapter) IsAdmin(ctx context.Context, userID string) (bool, error) {
	query, args, err := a.db.Select("is_admin").
		From(userRolesTable).
		Where(goqu.Ex{"user_id": userID}).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var isAdmin bool
	defer a.client.ObserveQuery(ctx, "user_roles.select", time.Now())
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewNetworkError("failed to fetch user role", err)
	}

	return isAdmin, nil
}

// GetByUserIDs returns the roles of the given users keyed by user id. Users
// without a row are absent from the map.
func (a *RoleAdapter) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*entities.UserRole, error) {
	out := make(map[string]*entities.UserRole, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query, args, err := a.db.Select("user_id", "is_admin").
		From(userRolesTable).
		Where(goqu.C("user_id").In(userIDs)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	defer a.client.ObserveQuery(ctx, "user_roles.select_many", time.Now())
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch user roles", err)
	}
	defer rows.Close()

	for rows.Next() {
		role := &entities.UserRole{}
		if err := rows.Scan(&role.UserID, &role.IsAdmin); err != nil {
			return nil, apperrors.NewInternalError("failed to scan user role", err)
		}
		out[role.UserID] = role
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewNetworkError("failed to read user roles", err)
	}

	return out, nil
}

// Upsert creates or updates a role row
func (a *RoleAdapter) Upsert(ctx context.Context, role *entities.UserRole) error {
	now := time.Now().UTC()
	query, args, err := a.db.Insert(userRolesTable).
		Rows(goqu.Record{
			"user_id":    role.UserID,
			"is_admin":   role.IsAdmin,
			"updated_at": now,
		}).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"is_admin":   goqu.L("EXCLUDED.is_admin"),
			"updated_at": now,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	defer a.client.ObserveQuery(ctx, "user_roles.upsert", time.Now())
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewNetworkError("failed to save user role", err)
	}

	return nil
}
