package clock

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "quotawin/internal/platform/errors"
)

const MinutesPerDay = 24 * 60

// ParseTimeToMinutes converts "H:MM" or "HH:MM" into minutes since midnight.
func ParseTimeToMinutes(value string) (int, error) {
	hourPart, minutePart, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q has no colon", apperrors.ErrInvalidTimeFormat, value)
	}
	if len(hourPart) < 1 || len(hourPart) > 2 || !allDigits(hourPart) {
		return 0, fmt.Errorf("%w: %q hour must be one or two digits", apperrors.ErrInvalidTimeFormat, value)
	}
	if len(minutePart) != 2 || !allDigits(minutePart) {
		return 0, fmt.Errorf("%w: %q minute must be two digits", apperrors.ErrInvalidTimeFormat, value)
	}
	hour, _ := strconv.Atoi(hourPart)
	minute, _ := strconv.Atoi(minutePart)
	if hour > 23 {
		return 0, fmt.Errorf("%w: %q hour out of range", apperrors.ErrInvalidTimeFormat, value)
	}
	if minute > 59 {
		return 0, fmt.Errorf("%w: %q minute out of range", apperrors.ErrInvalidTimeFormat, value)
	}
	return hour*60 + minute, nil
}

// MinutesToTimeString renders minutes since midnight as "HH:MM".
// Callers normalise values outside [0, 1439] first.
func MinutesToTimeString(minutes int) string {
	return FormatTimeFromHourMinute(minutes/60, minutes%60)
}

func FormatTimeFromHourMinute(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NormalizeMinutes wraps any minute offset into a single day.
func NormalizeMinutes(minutes int) int {
	return ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
