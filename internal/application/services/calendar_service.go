package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/application/loaders"
	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
	"github.com/zatekoja/workshopbooking/pkg/calendar"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

var timeNow = time.Now

// CalendarOptions holds the booking rules of a CalendarService
type CalendarOptions struct {
	Rule         calendar.SelectableRule
	Location     *time.Location
	MaxDates     int
	SelectionTTL time.Duration
}

// CalendarService builds the calendar views, keeps draft selections and
// records submitted dates
type CalendarService struct {
	dates    repositories.CalendarDateRepository
	slots    repositories.TimeSlotRepository
	identity providers.IdentityProvider
	cache    providers.CacheProvider
	syncer   *Syncer
	opts     CalendarOptions
}

// NewCalendarService creates a new calendar service
func NewCalendarService(
	dates repositories.CalendarDateRepository,
	slots repositories.TimeSlotRepository,
	identity providers.IdentityProvider,
	cache providers.CacheProvider,
	syncer *Syncer,
	opts CalendarOptions,
) *CalendarService {
	if opts.MaxDates <= 0 {
		opts.MaxDates = calendar.MaxSelectedDates
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if !opts.Rule.Valid() {
		opts.Rule = calendar.RuleThuFriSatExceptFirstSaturday
	}
	return &CalendarService{
		dates:    dates,
		slots:    slots,
		identity: identity,
		cache:    cache,
		syncer:   syncer,
		opts:     opts,
	}
}

// Today returns the current civil date in the booking time zone
func (s *CalendarService) Today() calendar.Date {
	return calendar.Today(timeNow(), s.opts.Location)
}

// Rule returns the selectable-day rule in force
func (s *CalendarService) Rule() calendar.SelectableRule {
	return s.opts.Rule
}

// Window returns the two-week booking window with the user's draft selection
func (s *CalendarService) Window(ctx context.Context, userID string) (*entities.BookingWindow, error) {
	sel, err := s.loadSelection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.window(sel), nil
}

func (s *CalendarService) window(sel *calendar.Selection) *entities.BookingWindow {
	days := calendar.TwoWeekWindow(s.Today(), s.opts.Rule)
	return &entities.BookingWindow{
		Title:     calendar.WindowTitle(days),
		Days:      days,
		Selected:  sel.Dates(),
		Max:       sel.Max(),
		CanSubmit: sel.Len() > 0,
	}
}

// Month returns the grid of the month containing ref
func (s *CalendarService) Month(ref calendar.Date) *entities.AdminMonth {
	first := ref.FirstOfMonth()
	return &entities.AdminMonth{
		Title: fmt.Sprintf("%s %d", calendar.MonthName(first.Month), first.Year),
		Month: fmt.Sprintf("%04d-%02d", first.Year, int(first.Month)),
		Cells: calendar.MonthGrid(first),
		Weeks: calendar.MonthWeeks(first),
		Today: s.Today(),
	}
}

// Selection returns the user's draft selection
func (s *CalendarService) Selection(ctx context.Context, userID string) ([]calendar.Date, error) {
	sel, err := s.loadSelection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sel.Dates(), nil
}

// ToggleDate adds or removes one selectable date from the draft
func (s *CalendarService) ToggleDate(ctx context.Context, userID string, d calendar.Date) (*entities.BookingWindow, bool, error) {
	sel, err := s.loadSelection(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if !sel.Contains(d) && !calendar.IsSelectable(d, s.Today(), s.opts.Rule) {
		return nil, false, apperrors.NewValidationError(fmt.Sprintf("%s is not available for booking", d))
	}

	selected, err := sel.Toggle(d)
	if err != nil {
		return nil, false, err
	}
	if err := s.saveSelection(ctx, userID, sel); err != nil {
		return nil, false, err
	}
	return s.window(sel), selected, nil
}

// ClearSelection drops the user's draft
func (s *CalendarService) ClearSelection(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, providers.SelectionCacheKey(userID))
}

// SubmitDates records one calendar_dates row per date in a single write and
// clears the draft. The date cap and the selectable-day rule apply here as
// they do to toggles.
func (s *CalendarService) SubmitDates(ctx context.Context, userID string, dates []calendar.Date) ([]*entities.CalendarDate, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticatedError("not signed in")
	}
	if len(dates) == 0 {
		return nil, apperrors.NewValidationError("Please select at least one date")
	}

	unique, err := calendar.UniqueDates(s.opts.MaxDates, dates)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	for _, d := range unique {
		if !calendar.IsSelectable(d, today, s.opts.Rule) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not available for booking", d))
		}
	}

	rows := make([]*entities.CalendarDate, 0, len(unique))
	for _, d := range unique {
		rows = append(rows, &entities.CalendarDate{UserID: userID, Date: d})
	}

	err = s.syncer.Write(ctx, "calendar dates", func(ctx context.Context) error {
		return s.dates.CreateMany(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	if err := s.ClearSelection(ctx, userID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to clear draft after submit")
	}
	log.Ctx(ctx).Info().Str("user_id", userID).Int("dates", len(rows)).Msg("calendar dates submitted")
	return rows, nil
}

// MyDates lists the dates a user has claimed
func (s *CalendarService) MyDates(ctx context.Context, userID string) ([]*entities.CalendarDate, error) {
	return Fetch(ctx, s.syncer, "calendar dates", func(ctx context.Context) ([]*entities.CalendarDate, error) {
		return s.dates.ListByUser(ctx, userID)
	})
}

// AdminMonth returns the month grid with the number of claims per day
func (s *CalendarService) AdminMonth(ctx context.Context, ref calendar.Date) (*entities.AdminMonth, error) {
	month := s.Month(ref)
	first := ref.FirstOfMonth()
	last := first.AddDays(first.DaysInMonth() - 1)

	counts, err := Fetch(ctx, s.syncer, "reservation counts", func(ctx context.Context) ([]entities.DateCount, error) {
		return s.dates.CountByRange(ctx, first, last)
	})
	if err != nil {
		return nil, err
	}

	month.Counts = make(map[string]int, len(counts))
	for _, c := range counts {
		month.Counts[c.Date.String()] = c.Count
	}
	return month, nil
}

// DateDetail lists who claimed a date and the slots they booked that day.
// A date without claims is not an error; it yields the empty state.
func (s *CalendarService) DateDetail(ctx context.Context, d calendar.Date) (*entities.DateDetail, error) {
	attendees, err := Fetch(ctx, s.syncer, "date details", func(ctx context.Context) ([]*entities.DateAttendee, error) {
		return s.dates.UsersByDate(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	detail := &entities.DateDetail{Date: d, Attendees: []entities.DateAttendance{}}
	if len(attendees) == 0 {
		detail.State = entities.DetailStateEmpty
		detail.Message = entities.NoDateDetailsMessage
		return detail, nil
	}
	detail.State = entities.DetailStateReady

	slots, err := Fetch(ctx, s.syncer, "time slots", func(ctx context.Context) ([]*entities.TimeSlot, error) {
		return s.slots.ListByDate(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	slotsByUser := make(map[string][]entities.TimeSlot)
	for _, slot := range slots {
		slotsByUser[slot.UserID] = append(slotsByUser[slot.UserID], *slot)
	}

	for _, a := range attendees {
		entry := entities.DateAttendance{
			UserID:    a.UserID,
			User:      s.lookupIdentity(ctx, a.UserID),
			ClaimedAt: a.CreatedAt.Format(time.RFC3339),
			TimeSlots: slotsByUser[a.UserID],
		}
		if entry.TimeSlots == nil {
			entry.TimeSlots = []entities.TimeSlot{}
		}
		detail.Attendees = append(detail.Attendees, entry)
	}
	return detail, nil
}

// lookupIdentity resolves a user for display; failures leave it unresolved
func (s *CalendarService) lookupIdentity(ctx context.Context, userID string) *entities.Identity {
	var (
		user *entities.Identity
		err  error
	)
	if l := loaders.For(ctx); l != nil {
		user, err = l.IdentityLoader.Load(ctx, userID)()
	} else if s.identity != nil {
		user, err = s.identity.GetUserByID(ctx, userID)
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to resolve attendee")
		return nil
	}
	return user
}

func (s *CalendarService) loadSelection(ctx context.Context, userID string) (*calendar.Selection, error) {
	if s.cache == nil || userID == "" {
		return calendar.NewSelection(s.opts.MaxDates), nil
	}

	data, err := s.cache.Get(ctx, providers.SelectionCacheKey(userID))
	if errors.Is(err, providers.ErrCacheMiss) {
		return calendar.NewSelection(s.opts.MaxDates), nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load selection", err)
	}

	var dates []calendar.Date
	if err := json.Unmarshal(data, &dates); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("discarding unreadable draft selection")
		return calendar.NewSelection(s.opts.MaxDates), nil
	}
	return calendar.RestoreSelection(s.opts.MaxDates, dates), nil
}

func (s *CalendarService) saveSelection(ctx context.Context, userID string, sel *calendar.Selection) error {
	if s.cache == nil {
		return nil
	}
	key := providers.SelectionCacheKey(userID)
	if sel.Len() == 0 {
		return s.cache.Delete(ctx, key)
	}

	data, err := json.Marshal(sel.Dates())
	if err != nil {
		return apperrors.NewInternalError("failed to encode selection", err)
	}
	if err := s.cache.Set(ctx, key, data, providers.TTLSeconds(s.opts.SelectionTTL)); err != nil {
		return apperrors.NewInternalError("failed to save selection", err)
	}
	return nil
}
