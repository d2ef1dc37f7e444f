package clock

import (
	"fmt"
	"time"

	apperrors "quotawin/internal/platform/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Now reads the clock and pins the result to UTC.
func Now(c Clock) time.Time {
	return c.Now().UTC()
}

func ToISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func FromISO(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", apperrors.ErrInvalidInput, value, err)
	}
	return t.UTC(), nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", apperrors.ErrInvalidInput, value, err)
	}
	return t, nil
}

func AddHours(t time.Time, hours int) time.Time {
	return t.UTC().Add(time.Duration(hours) * time.Hour)
}

// DiffMinutes returns the absolute distance between a and b in whole minutes.
func DiffMinutes(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / time.Minute)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfHour truncates t to the top of its UTC hour.
func StartOfHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
