package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	calendarScope = "https://www.googleapis.com/auth/calendar.readonly"
	eventsURL     = "https://www.googleapis.com/calendar/v3/calendars/%s/events"

	// SouthAfricaCalendarID is Google's public South African holiday calendar.
	SouthAfricaCalendarID = "en.sa#holiday@group.v.calendar.google.com"
)

// GoogleProvider reads public holidays from a Google Calendar using a service
// account.
type GoogleProvider struct {
	client     *http.Client
	calendarID string
	baseURL    string
}

// NewGoogleProvider builds a provider from service account credentials JSON.
func NewGoogleProvider(ctx context.Context, credentialsJSON []byte, calendarID string) (*GoogleProvider, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendarScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}
	if calendarID == "" {
		calendarID = SouthAfricaCalendarID
	}
	return &GoogleProvider{
		client:     oauth2.NewClient(ctx, creds.TokenSource),
		calendarID: calendarID,
		baseURL:    eventsURL,
	}, nil
}

type eventList struct {
	Items []struct {
		Summary string `json:"summary"`
		Start   struct {
			Date string `json:"date"`
		} `json:"start"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

func (g *GoogleProvider) Holidays(ctx context.Context, year int) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	pageToken := ""
	for {
		page, err := g.fetch(ctx, year, pageToken)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			date, err := time.Parse(time.DateOnly, item.Start.Date)
			if err != nil || date.Year() != year {
				continue
			}
			out = append(out, holiday.Holiday{Date: date, Name: item.Summary})
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

func (g *GoogleProvider) fetch(ctx context.Context, year int, pageToken string) (eventList, error) {
	q := url.Values{}
	q.Set("timeMin", time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339))
	q.Set("timeMax", time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", strconv.Itoa(250))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	endpoint := fmt.Sprintf(g.baseURL, url.PathEscape(g.calendarID)) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eventList{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return eventList{}, fmt.Errorf("%w: %v", holiday.ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eventList{}, fmt.Errorf("%w: calendar API returned %d", holiday.ErrProviderFailed, resp.StatusCode)
	}

	var page eventList
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return eventList{}, fmt.Errorf("%w: %v", holiday.ErrProviderFailed, err)
	}
	return page, nil
}

// FallbackProvider tries each provider in turn and returns the first success.
type FallbackProvider []holiday.Provider

func (f FallbackProvider) Holidays(ctx context.Context, year int) ([]holiday.Holiday, error) {
	var lastErr error = holiday.ErrProviderFailed
	for _, p := range f {
		out, err := p.Holidays(ctx, year)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
