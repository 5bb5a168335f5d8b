package operations

import (
	"context"
	"time"

	"todoistmcp/internal/service"
)

const (
	dayLayout  = time.RFC3339
	weekLayout = "2006-01-02T15:04:05.000Z07:00"
)

// DayWindow returns the local calendar day containing now, from 00:00:00
// through 23:59:59.
func DayWindow(now time.Time) (since, until time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// WeekWindow returns the local week containing now. Weeks start on Sunday
// at 00:00:00.000 and end six days later at 23:59:59.999.
func WeekWindow(now time.Time) (since, until time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	first := d - int(now.Weekday())
	return time.Date(y, m, first, 0, 0, 0, 0, loc),
		time.Date(y, m, first+6, 23, 59, 59, int(999*time.Millisecond), loc)
}

// GetCompleted queries the completion history. A missing Since or Until
// defaults to the bound of the current local day.
func (t *Tasks) GetCompleted(ctx context.Context, query service.CompletedQuery) ([]service.CompletedTask, error) {
	if query.Since == "" || query.Until == "" {
		since, until := DayWindow(t.clock.Now())
		if query.Since == "" {
			query.Since = since.Format(dayLayout)
		}
		if query.Until == "" {
			query.Until = until.Format(dayLayout)
		}
	}
	return t.completed(ctx, query, "get completed tasks")
}

// GetTodayCompleted returns tasks completed during the current local day.
func (t *Tasks) GetTodayCompleted(ctx context.Context) ([]service.CompletedTask, error) {
	since, until := DayWindow(t.clock.Now())
	return t.completed(ctx, service.CompletedQuery{
		Since: since.Format(dayLayout),
		Until: until.Format(dayLayout),
	}, "get today's completed tasks")
}

// GetWeekCompleted returns tasks completed during the current local week.
func (t *Tasks) GetWeekCompleted(ctx context.Context) ([]service.CompletedTask, error) {
	since, until := WeekWindow(t.clock.Now())
	return t.completed(ctx, service.CompletedQuery{
		Since: since.Format(weekLayout),
		Until: until.Format(weekLayout),
	}, "get this week's completed tasks")
}

func (t *Tasks) completed(ctx context.Context, query service.CompletedQuery, action string) ([]service.CompletedTask, error) {
	if t.gw == nil {
		return nil, errNotInitialized
	}
	items, err := t.gw.GetCompletedTasks(ctx, query)
	if err != nil {
		return nil, gatewayError(t.logger, err, action)
	}
	if items == nil {
		items = []service.CompletedTask{}
	}
	return items, nil
}
