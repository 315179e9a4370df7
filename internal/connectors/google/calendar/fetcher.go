// Package calendar fetches and normalises Google Calendar events for a
// local calendar day, aggregating across every calendar the user can
// access with bounded concurrency and retries.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/HerbCaudill/journal-calendar/internal/connectors/google"
	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
	"github.com/HerbCaudill/journal-calendar/internal/core/ports/driven"
	"github.com/HerbCaudill/journal-calendar/internal/retry"
)

// Ensure Fetcher implements the interface.
var _ driven.EventFetcher = (*Fetcher)(nil)

// Fetcher retrieves events through the Google Calendar API.
type Fetcher struct {
	cfg     Config
	limiter *google.RateLimiter
	log     *zap.Logger
}

// NewFetcher creates a fetcher with the given configuration.
func NewFetcher(cfg Config, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		cfg:     cfg,
		limiter: google.NewRateLimiter(cfg.RateLimit),
		log:     log,
	}
}

// FetchDay fetches one calendar's events for the given local date.
// The date is validated before any network I/O.
func (f *Fetcher) FetchDay(
	ctx context.Context,
	tokens *domain.OAuthToken,
	date, calendarID string,
) ([]domain.CalendarEvent, error) {
	timeMin, timeMax, err := dayWindow(date)
	if err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	svc, err := google.NewCalendarService(ctx, google.TokenSource(tokens), f.cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return f.fetchDay(ctx, svc, timeMin, timeMax, calendarID)
}

// FetchAll lists the user's calendars and fetches each one's events
// for the date concurrently. At least one successful calendar makes
// the aggregate succeed; only total failure surfaces an error (the
// first one encountered).
func (f *Fetcher) FetchAll(
	ctx context.Context,
	tokens *domain.OAuthToken,
	date string,
) ([]domain.CalendarEvent, error) {
	timeMin, timeMax, err := dayWindow(date)
	if err != nil {
		return nil, err
	}

	svc, err := google.NewCalendarService(ctx, google.TokenSource(tokens), f.cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	// The list call gets the same retry budget as the per-calendar
	// fetches: a transient failure here would otherwise sink the whole
	// aggregate on the first attempt.
	listOut := retry.Do(ctx, func(ctx context.Context) ([]string, error) {
		return f.listCalendars(ctx, svc)
	}, f.cfg.Retry)
	if !listOut.OK() {
		return nil, listOut.Err
	}
	calendarIDs := listOut.Value
	if len(calendarIDs) == 0 {
		return []domain.CalendarEvent{}, nil
	}

	requestID := uuid.NewString()
	f.log.Debug("fetching events",
		zap.String("request_id", requestID),
		zap.String("date", date),
		zap.Int("calendars", len(calendarIDs)))

	tasks := make([]func(ctx context.Context) ([]domain.CalendarEvent, error), len(calendarIDs))
	for i, id := range calendarIDs {
		id := id
		tasks[i] = func(ctx context.Context) ([]domain.CalendarEvent, error) {
			return f.fetchDay(ctx, svc, timeMin, timeMax, id)
		}
	}

	poolCfg := retry.PoolConfig{
		MaxConcurrent:      f.cfg.MaxConcurrent,
		DelayBetweenStarts: f.cfg.DelayBetweenStarts,
	}
	outcomes := retry.AllWithRetry(ctx, tasks, poolCfg, f.cfg.Retry)

	var merged []domain.CalendarEvent
	var firstErr error
	succeeded := 0
	for i, out := range outcomes {
		if out.OK() {
			succeeded++
			merged = append(merged, out.Value...)
			continue
		}
		if firstErr == nil {
			firstErr = out.Err
		}
		f.log.Warn("calendar fetch failed",
			zap.String("request_id", requestID),
			zap.String("calendar_id", calendarIDs[i]),
			zap.Int("attempts", out.Attempts),
			zap.Error(out.Err))
	}

	// Partial-failure policy: any successful calendar (even with zero
	// events) counts as aggregate success.
	if succeeded == 0 && firstErr != nil {
		return nil, firstErr
	}

	domain.SortEvents(merged)
	if merged == nil {
		merged = []domain.CalendarEvent{}
	}
	return merged, nil
}

// fetchDay pulls one calendar's events inside the window, following
// pagination.
func (f *Fetcher) fetchDay(
	ctx context.Context,
	svc *gcal.Service,
	timeMin, timeMax time.Time,
	calendarID string,
) ([]domain.CalendarEvent, error) {
	var events []domain.CalendarEvent
	pageToken := ""

	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(f.cfg.MaxResults).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, f.wrap(err)
		}

		for _, item := range page.Items {
			if item == nil || item.Id == "" {
				continue
			}
			events = append(events, NormalizeEvent(item, calendarID))
		}

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// listCalendars returns the ids of every calendar the user can read.
func (f *Fetcher) listCalendars(ctx context.Context, svc *gcal.Service) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, f.wrap(err)
		}

		for _, entry := range page.Items {
			if entry != nil && entry.Id != "" {
				ids = append(ids, entry.Id)
			}
		}

		if page.NextPageToken == "" {
			return ids, nil
		}
		pageToken = page.NextPageToken
	}
}

// wrap classifies an API error and feeds rate-limit hints back into
// the limiter.
func (f *Fetcher) wrap(err error) error {
	wrapped := google.WrapError(err)
	var rle *domain.RateLimitError
	if errors.As(wrapped, &rle) && rle.StatusCode == 429 {
		f.limiter.RecordRateLimitError(rle.RetryAfter)
	}
	return wrapped
}

// dayWindow computes the half-open window [local midnight, +24h) for a
// "YYYY-MM-DD" date. Malformed and impossible dates (day 30 of
// February) are rejected here, before any network call.
func dayWindow(date string) (timeMin, timeMax time.Time, err error) {
	start, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}
	return start, start.AddDate(0, 0, 1), nil
}
