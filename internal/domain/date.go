package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// CalendarDate is a timezone-naive calendar day (no time-of-day component).
// Workout dates are calendar days, not instants: bucketing and streak logic
// must never round-trip through a timezone-aware type, or a "2024-03-01"
// logged in one timezone shifts to "2024-02-29" when displayed in another.
// It marshals to the "YYYY-MM-DD" string in both JSON and BSON, which keeps
// MongoDB's lexicographic sort on the field chronological.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate parses a "YYYY-MM-DD" literal by decomposing it into
// integer components. A trailing time portion ("2024-03-01T00:00:00Z") is
// truncated rather than interpreted.
func ParseCalendarDate(value string) (CalendarDate, error) {
	s := value
	if idx := strings.IndexByte(s, 'T'); idx != -1 {
		s = s[:idx]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return CalendarDate{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid year in date %q", value)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid month in date %q", value)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid day in date %q", value)
	}

	d := CalendarDate{Year: year, Month: time.Month(month), Day: day}
	// Round-trip through time.Date to reject normalized-away values like
	// February 30th (time.Date silently rolls them forward).
	check := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if check.Year() != year || check.Month() != time.Month(month) || check.Day() != day || month < 1 || month > 12 || day < 1 {
		return CalendarDate{}, fmt.Errorf("invalid calendar date %q", value)
	}
	return d, nil
}

// DateOf extracts the calendar date from an instant, in the instant's location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current calendar date in local time.
func Today() CalendarDate {
	return DateOf(time.Now())
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// AddDays returns the date n days after d (n may be negative). Day arithmetic
// is delegated to time.Date's normalization; noon UTC keeps it clear of any
// DST boundary.
func (d CalendarDate) AddDays(n int) CalendarDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	return DateOf(t)
}

func (d CalendarDate) Equal(other CalendarDate) bool {
	return d == other
}

func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CalendarDate) After(other CalendarDate) bool {
	return other.Before(d)
}

// --- JSON ---

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// --- BSON ---
// Stored as the plain "YYYY-MM-DD" string, never as a BSON datetime.

func (d CalendarDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.String())
}

func (d *CalendarDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
