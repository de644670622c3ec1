package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalendarDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CalendarDate
		wantErr bool
	}{
		{name: "plain date", input: "2024-03-01", want: CalendarDate{2024, time.March, 1}},
		{name: "with time suffix", input: "2024-03-01T15:04:05Z", want: CalendarDate{2024, time.March, 1}},
		{name: "leap day", input: "2024-02-29", want: CalendarDate{2024, time.February, 29}},
		{name: "non leap february 29", input: "2023-02-29", wantErr: true},
		{name: "february 30", input: "2024-02-30", wantErr: true},
		{name: "month 13", input: "2024-13-01", wantErr: true},
		{name: "not a date", input: "yesterday", wantErr: true},
		{name: "missing day", input: "2024-03", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCalendarDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarDateString(t *testing.T) {
	d := CalendarDate{2024, time.March, 5}
	assert.Equal(t, "2024-03-05", d.String())
}

func TestCalendarDateAddDays(t *testing.T) {
	tests := []struct {
		name string
		from CalendarDate
		days int
		want CalendarDate
	}{
		{name: "within month", from: CalendarDate{2024, time.March, 10}, days: 5, want: CalendarDate{2024, time.March, 15}},
		{name: "across month boundary", from: CalendarDate{2024, time.February, 28}, days: 2, want: CalendarDate{2024, time.March, 1}},
		{name: "backwards across year", from: CalendarDate{2024, time.January, 1}, days: -1, want: CalendarDate{2023, time.December, 31}},
		{name: "leap february", from: CalendarDate{2024, time.March, 1}, days: -1, want: CalendarDate{2024, time.February, 29}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.AddDays(tt.days))
		})
	}
}

func TestCalendarDateOrdering(t *testing.T) {
	earlier := CalendarDate{2023, time.December, 31}
	later := CalendarDate{2024, time.January, 1}

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.True(t, later.After(earlier))
	assert.True(t, earlier.Equal(earlier))
	assert.False(t, earlier.Equal(later))
}

func TestCalendarDateJSONRoundTrip(t *testing.T) {
	d := CalendarDate{2024, time.July, 4}

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-04"`, string(raw))

	var back CalendarDate
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
