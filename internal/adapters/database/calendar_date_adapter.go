package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	"github.com/zatekoja/workshopbooking/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

const calendarDatesTable = "calendar_dates"

// CalendarDateAdapter implements CalendarDateRepository
type CalendarDateAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	sqlx   *sqlx.DB
}

// NewCalendarDateAdapter creates a new calendar date adapter
func NewCalendarDateAdapter(client *postgres.Client) repositories.CalendarDateRepository {
	return &CalendarDateAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		sqlx:   sqlx.NewDb(client.DB(), "postgres"),
	}
}

// CreateMany inserts one row per claimed date in a single statement
func (a *CalendarDateAdapter) CreateMany(ctx context.Context, dates []*entities.CalendarDate) error {
	if len(dates) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(dates))
	for _, d := range dates {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now().UTC()
		}
		rows = append(rows, goqu.Record{
			"user_id":    d.UserID,
			"date":       d.Date.String(),
			"created_at": d.CreatedAt,
		})
	}

	query, args, err := a.db.Insert(calendarDatesTable).Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	defer a.client.ObserveQuery(ctx, "calendar_dates.insert", time.Now())
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewNetworkError("failed to save calendar dates", err)
	}

	return nil
}

// ListByUser retrieves the dates a user claimed, oldest date first
func (a *CalendarDateAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.CalendarDate, error) {
	return a.list(ctx, goqu.Ex{"user_id": userID})
}

func (a *CalendarDateAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.CalendarDate, error) {
	query, args, err := a.db.Select("user_id", "date", "created_at").
		From(calendarDatesTable).
		Where(where).
		Order(goqu.C("date").Asc(), goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	defer a.client.ObserveQuery(ctx, "calendar_dates.select", time.Now())
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch calendar dates", err)
	}
	defer rows.Close()

	var out []*entities.CalendarDate
	for rows.Next() {
		var (
			cd  entities.CalendarDate
			day time.Time
		)
		if err := rows.Scan(&cd.UserID, &day, &cd.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan calendar date", err)
		}
		cd.Date = calendar.DateOf(day)
		out = append(out, &cd)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewNetworkError("failed to read calendar dates", err)
	}

	return out, nil
}

// CountByRange counts claims per date between from and to inclusive
func (a *CalendarDateAdapter) CountByRange(ctx context.Context, from, to calendar.Date) ([]entities.DateCount, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid range %s..%s", from, to))
	}

	query, args, err := a.db.From(calendarDatesTable).
		Select(goqu.C("date"), goqu.COUNT("*").As("count")).
		Where(goqu.C("date").Between(goqu.Range(from.String(), to.String()))).
		GroupBy("date").
		Order(goqu.C("date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	defer a.client.ObserveQuery(ctx, "calendar_dates.count", time.Now())
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to count calendar dates", err)
	}
	defer rows.Close()

	var out []entities.DateCount
	for rows.Next() {
		var (
			day   time.Time
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan date count", err)
		}
		out = append(out, entities.DateCount{Date: calendar.DateOf(day), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewNetworkError("failed to read date counts", err)
	}

	return out, nil
}

// UsersByDate calls the get_users_by_date procedure
func (a *CalendarDateAdapter) UsersByDate(ctx context.Context, date calendar.Date) ([]*entities.DateAttendee, error) {
	var attendees []*entities.DateAttendee
	defer a.client.ObserveQuery(ctx, "get_users_by_date", time.Now())
	err := a.sqlx.SelectContext(ctx, &attendees,
		"SELECT user_id, created_at FROM get_users_by_date($1)", date.String())
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch users for date", err)
	}
	return attendees, nil
}
