package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinuteOfDay(t *testing.T) {
	assert.Equal(t, 0, MinuteOfDay(time.Date(2024, 3, 4, 0, 0, 59, 0, time.UTC)))
	assert.Equal(t, 550, MinuteOfDay(time.Date(2024, 3, 4, 9, 10, 0, 0, time.UTC)))
	assert.Equal(t, 1439, MinuteOfDay(time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)))
}

func TestDateOf(t *testing.T) {
	d := DateOf(time.Date(2024, 3, 4, 17, 45, 12, 99, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.Monday, d.Weekday())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("04.03.2024")
	assert.Error(t, err)
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "09:10", FormatMinute(550))
	assert.Equal(t, "00:00", FormatMinute(0))
	assert.Equal(t, "23:59", FormatMinute(1439))
}
