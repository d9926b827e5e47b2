package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	got, ok := ParseDate("2024-10-10")
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, ok = ParseDate("2024-10-10T22:10:10Z")
	require.True(t, ok)
	assert.Equal(t, want, got)

	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok = ParseDate(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = ParseDate("10/10/2024")
	assert.False(t, ok)
}

func TestEachDay(t *testing.T) {
	var days []string
	err := EachDay(
		time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		func(d time.Time) error {
			days = append(days, d.Format(time.DateOnly))
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, days)
}
