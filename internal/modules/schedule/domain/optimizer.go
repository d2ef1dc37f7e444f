package domain

import (
	"fmt"

	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

// Params fixes the quota window rule the optimizer plans against.
type Params struct {
	// WindowMinutes is the length of one triggered quota window.
	WindowMinutes int
	// MinUsefulMinutes is the shortest stretch of workday a trigger must
	// still cover; later triggers are rejected.
	MinUsefulMinutes int
}

func DefaultParams() Params {
	return Params{WindowMinutes: 300, MinUsefulMinutes: 30}
}

func (p Params) Validate() error {
	if p.WindowMinutes <= 0 {
		return fmt.Errorf("%w: window length must be positive", apperrors.ErrInvalidInput)
	}
	// A trigger must cover at least one minute of the workday, so the last
	// one always starts before end.
	if p.MinUsefulMinutes < 1 || p.MinUsefulMinutes > p.WindowMinutes {
		return fmt.Errorf("%w: minimum useful coverage must be within [1, %d]", apperrors.ErrInvalidInput, p.WindowMinutes)
	}
	return nil
}

// Window is one trigger, placed as an offset from the workday start.
type Window struct {
	StartMinute     int
	DurationMinutes int
}

func (w Window) StartClock(workdayStart int) string {
	return clock.MinutesToTimeString(clock.NormalizeMinutes(workdayStart + w.StartMinute))
}

func (w Window) EndClock(workdayStart int) string {
	return clock.MinutesToTimeString(clock.NormalizeMinutes(workdayStart + w.StartMinute + w.DurationMinutes))
}

type Schedule struct {
	Start         string
	End           string
	StartMinute   int
	TotalMinutes  int
	Windows       []Window
	LeadingSlack  int
	TrailingSlack int
	MinSlack      int
}

func (s Schedule) StartTimes() []string {
	out := make([]string, 0, len(s.Windows))
	for _, w := range s.Windows {
		out = append(out, w.StartClock(s.StartMinute))
	}
	return out
}

// Plan places as many triggers as the workday [start, end) admits, then
// spreads the spare minutes so the smallest gap is as large as possible.
// An end before start is read as the next day. Intervals shorter than one
// window, including start == end, get a single trigger at start.
func Plan(start, end string, p Params) (Schedule, error) {
	if err := p.Validate(); err != nil {
		return Schedule{}, err
	}
	startMinute, err := clock.ParseTimeToMinutes(start)
	if err != nil {
		return Schedule{}, err
	}
	endMinute, err := clock.ParseTimeToMinutes(end)
	if err != nil {
		return Schedule{}, err
	}
	if endMinute < startMinute {
		endMinute += clock.MinutesPerDay
	}
	total := endMinute - startMinute

	schedule := Schedule{
		Start:        clock.MinutesToTimeString(startMinute),
		End:          clock.MinutesToTimeString(clock.NormalizeMinutes(endMinute)),
		StartMinute:  startMinute,
		TotalMinutes: total,
	}
	if total < p.WindowMinutes {
		schedule.Windows = []Window{{StartMinute: 0, DurationMinutes: p.WindowMinutes}}
		return schedule, nil
	}

	// Triggers may start anywhere in [0, usable].
	usable := total - p.MinUsefulMinutes
	count := usable/p.WindowMinutes + 1
	free := usable - (count-1)*p.WindowMinutes
	gaps := distributeSlack(free, count)

	offset := gaps[0]
	schedule.Windows = make([]Window, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			offset += p.WindowMinutes + gaps[i]
		}
		schedule.Windows = append(schedule.Windows, Window{StartMinute: offset, DurationMinutes: p.WindowMinutes})
	}
	schedule.LeadingSlack = gaps[0]
	schedule.TrailingSlack = gaps[count]
	schedule.MinSlack = gaps[0]
	for _, gap := range gaps[1:] {
		if gap < schedule.MinSlack {
			schedule.MinSlack = gap
		}
	}
	return schedule, nil
}

// OptimalStartTimes returns the trigger clock times of Plan in order.
func OptimalStartTimes(start, end string, p Params) ([]string, error) {
	schedule, err := Plan(start, end, p)
	if err != nil {
		return nil, err
	}
	return schedule.StartTimes(), nil
}

// distributeSlack splits free minutes over count+1 gaps: leading, the
// count-1 gaps between triggers, and trailing. Remainder minutes go to the
// inner gaps first, then trailing, so the first trigger is never later
// than an even split allows.
func distributeSlack(free, count int) []int {
	slots := count + 1
	gaps := make([]int, slots)
	base := free / slots
	for i := range gaps {
		gaps[i] = base
	}
	remainder := free % slots
	for i := 1; i < count && remainder > 0; i++ {
		gaps[i]++
		remainder--
	}
	if remainder > 0 {
		gaps[count]++
	}
	return gaps
}
