package gcalendar

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const primaryCalendar = "primary"

var ErrNoToken = errors.New("no google token in session")

type Event struct {
	Summary  string
	Start    string
	End      string
	Location string
}

type ICalendar interface {
	Status(ctx context.Context, token *oauth2.Token) (bool, error)
	ListEvents(ctx context.Context, token *oauth2.Token, from, to time.Time, maxResults int64) ([]Event, error)
}

type calendarClient struct{}

func New() ICalendar {
	return &calendarClient{}
}

func (c *calendarClient) service(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrNoToken
	}

	src := oauth2.StaticTokenSource(token)
	return calendar.NewService(ctx, option.WithTokenSource(src))
}

func (c *calendarClient) Status(ctx context.Context, token *oauth2.Token) (bool, error) {
	srv, err := c.service(ctx, token)
	if err != nil {
		return false, err
	}

	if _, err := srv.Calendars.Get(primaryCalendar).Do(); err != nil {
		return false, err
	}

	return true, nil
}

func (c *calendarClient) ListEvents(ctx context.Context, token *oauth2.Token, from, to time.Time, maxResults int64) ([]Event, error) {
	srv, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	list, err := srv.Events.List(primaryCalendar).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Do()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, item := range list.Items {
		events = append(events, Event{
			Summary:  item.Summary,
			Start:    eventTime(item.Start),
			End:      eventTime(item.End),
			Location: item.Location,
		})
	}

	return events, nil
}

// eventTime handles both timed and all-day events.
func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
