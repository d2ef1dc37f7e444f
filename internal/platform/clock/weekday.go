package clock

import (
	"fmt"
	"time"

	apperrors "quotawin/internal/platform/errors"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists every day in Monday-first order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Weekday) String() string {
	return string(d)
}

func (d Weekday) Validate() error {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return nil
	default:
		return fmt.Errorf("%w: unknown weekday %q", apperrors.ErrInvalidInput, string(d))
	}
}

func ParseWeekday(value string) (Weekday, error) {
	day := Weekday(value)
	if err := day.Validate(); err != nil {
		return "", err
	}
	return day, nil
}

func FromTimeWeekday(d time.Weekday) Weekday {
	switch d {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		panic(fmt.Sprintf("clock: unexpected weekday %d", d))
	}
}

// DayOfWeek reports the UTC weekday of t.
func DayOfWeek(t time.Time) Weekday {
	return FromTimeWeekday(t.UTC().Weekday())
}

// DayOfDate maps a "YYYY-MM-DD" date to its weekday.
func DayOfDate(date string) (Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return DayOfWeek(t), nil
}
