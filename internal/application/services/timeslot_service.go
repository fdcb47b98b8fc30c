package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// TimeSlotService books start/end ranges on a date
type TimeSlotService struct {
	repo   repositories.TimeSlotRepository
	syncer *Syncer
}

// NewTimeSlotService creates a new time slot service
func NewTimeSlotService(repo repositories.TimeSlotRepository, syncer *Syncer) *TimeSlotService {
	return &TimeSlotService{repo: repo, syncer: syncer}
}

// Options returns the start times and, for a non-empty start, the valid ends
func (s *TimeSlotService) Options(start string) (*entities.TimeSlotOptions, error) {
	opts := &entities.TimeSlotOptions{Starts: calendar.StartOptions(), Ends: []string{}}
	if start != "" {
		ends, err := calendar.EndOptions(start)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("Invalid start time", map[string]string{"startTime": err.Error()})
		}
		opts.Ends = ends
	}

	opts.Labels = make(map[string]string, len(opts.Starts)+len(opts.Ends))
	for _, list := range [][]string{opts.Starts, opts.Ends} {
		for _, t := range list {
			opts.Labels[t] = calendar.FormatClock12(t)
		}
	}
	return opts, nil
}

// Book validates and stores one time slot in a single write
func (s *TimeSlotService) Book(ctx context.Context, req entities.BookTimeSlotRequest) (*entities.TimeSlot, error) {
	if req.UserID == "" {
		return nil, apperrors.NewUnauthenticatedError("not signed in")
	}

	fields := calendar.ValidateTimeRange(req.StartTime, req.EndTime)
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		fields["date"] = "Please select a valid date"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("Please correct the highlighted fields", fields)
	}

	slot := &entities.TimeSlot{
		UserID:    req.UserID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	err = s.syncer.Write(ctx, "time slot", func(ctx context.Context) error {
		return s.repo.Create(ctx, slot)
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("user_id", slot.UserID).Str("date", slot.Date.String()).
		Str("start", slot.StartTime).Str("end", slot.EndTime).Msg("time slot booked")
	return slot, nil
}

// ListByUser lists a user's booked slots
func (s *TimeSlotService) ListByUser(ctx context.Context, userID string) ([]*entities.TimeSlot, error) {
	return Fetch(ctx, s.syncer, "time slots", func(ctx context.Context) ([]*entities.TimeSlot, error) {
		return s.repo.ListByUser(ctx, userID)
	})
}
