package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekday_SundayIndexTable(t *testing.T) {
	cases := []struct {
		day  Weekday
		want int
	}{
		{Monday, 1},
		{Tuesday, 2},
		{Wednesday, 3},
		{Thursday, 4},
		{Friday, 5},
		{Saturday, 6},
		{Sunday, 0},
	}
	for _, c := range cases {
		t.Run(c.day.String(), func(t *testing.T) {
			assert.Equal(t, c.want, c.day.SundayIndex())

			back, err := FromSundayIndex(c.want)
			require.NoError(t, err)
			assert.Equal(t, c.day, back)
		})
	}

	_, err := FromSundayIndex(7)
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	// 2024-06-03 is a Monday.
	monday := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		assert.Equal(t, Weekday(i), WeekdayOf(day), day.Weekday().String())
		assert.Equal(t, int(day.Weekday()), WeekdayOf(day).SundayIndex())
	}
}

func TestNormalizeWeekStart(t *testing.T) {
	want := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, want, NormalizeWeekStart(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, want, NormalizeWeekStart(time.Date(2024, 6, 5, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, want, NormalizeWeekStart(time.Date(2024, 6, 9, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, want.AddDate(0, 0, 7), NormalizeWeekStart(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))
}
