package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasterSunday(t *testing.T) {
	cases := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
	}
	for year, want := range cases {
		assert.Equal(t, want, EasterSunday(year).Format(time.DateOnly), "year %d", year)
	}
}

func TestStaticProvider_Holidays(t *testing.T) {
	list, err := NewStaticProvider().Holidays(context.Background(), 2026)
	require.NoError(t, err)

	set := holiday.NewSet(list)
	assert.True(t, set.IsHoliday(time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)), "Good Friday")
	assert.True(t, set.IsHoliday(time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)), "Family Day")
	// Heritage Day 2026 is a Thursday.
	assert.True(t, set.IsHoliday(time.Date(2026, 9, 24, 0, 0, 0, 0, time.UTC)))
	// Youth Day 2024 fell on a Sunday.
	list, err = NewStaticProvider().Holidays(context.Background(), 2024)
	require.NoError(t, err)
	set = holiday.NewSet(list)
	assert.True(t, set.IsHoliday(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)), "Youth Day observed")
}

func TestGoogleProvider_Holidays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"summary":"Freedom Day","start":{"date":"2026-04-27"}},
			{"summary":"Wrong year","start":{"date":"2027-01-01"}},
			{"summary":"Timed","start":{"dateTime":"2026-05-01T10:00:00Z"}}
		]}`))
	}))
	defer srv.Close()

	p := &GoogleProvider{client: srv.Client(), calendarID: "test", baseURL: srv.URL + "/%s"}
	list, err := p.Holidays(context.Background(), 2026)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Freedom Day", list[0].Name)
}

type failingProvider struct{}

func (failingProvider) Holidays(context.Context, int) ([]holiday.Holiday, error) {
	return nil, holiday.ErrProviderFailed
}

func TestFallbackProvider(t *testing.T) {
	list, err := FallbackProvider{failingProvider{}, NewStaticProvider()}.Holidays(context.Background(), 2025)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	_, err = FallbackProvider{failingProvider{}}.Holidays(context.Background(), 2025)
	assert.True(t, errors.Is(err, holiday.ErrProviderFailed))
}
