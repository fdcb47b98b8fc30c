package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

const timeSlotsTable = "time_slots"

// TimeSlotAdapter implements TimeSlotRepository
type TimeSlotAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTimeSlotAdapter creates a new time slot adapter
func NewTimeSlotAdapter(client *postgres.Client) repositories.TimeSlotRepository {
	return &TimeSlotAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a time slot, assigning an id when missing
func (a *TimeSlotAdapter) Create(ctx context.Context, slot *entities.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":         slot.ID,
		"user_id":    slot.UserID,
		"date":       slot.Date.String(),
		"start_time": slot.StartTime,
		"end_time":   slot.EndTime,
		"created_at": slot.CreatedAt,
	}

	query, args, err := a.db.Insert(timeSlotsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	defer a.client.ObserveQuery(ctx, "time_slots.insert", time.Now())
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewNetworkError("failed to save time slot", err)
	}

	return nil
}

// ListByUser retrieves a user's slots
func (a *TimeSlotAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.TimeSlot, error) {
	return a.list(ctx, goqu.Ex{"user_id": userID})
}

// ListByDate retrieves every slot on one date
func (a *TimeSlotAdapter) ListByDate(ctx context.Context, date calendar.Date) ([]*entities.TimeSlot, error) {
	return a.list(ctx, goqu.Ex{"date": date.String()})
}

func (a *TimeSlotAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.TimeSlot, error) {
	query, args, err := a.db.Select("id", "user_id", "date", "start_time", "end_time", "created_at").
		From(timeSlotsTable).
		Where(where).
		Order(goqu.C("date").Asc(), goqu.C("start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	defer a.client.ObserveQuery(ctx, "time_slots.select", time.Now())
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch time slots", err)
	}
	defer rows.Close()

	var out []*entities.TimeSlot
	for rows.Next() {
		var (
			slot entities.TimeSlot
			day  time.Time
		)
		if err := rows.Scan(&slot.ID, &slot.UserID, &day, &slot.StartTime, &slot.EndTime, &slot.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan time slot", err)
		}
		slot.Date = calendar.DateOf(day)
		out = append(out, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewNetworkError("failed to read time slots", err)
	}

	return out, nil
}
