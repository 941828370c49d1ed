package domain

import (
	"fmt"
	"strconv"
)

// TimeWindow is a closed [Start, End] interval of HHMMSS time-of-day values,
// UTC. Cross-midnight windows (Start > End) are rejected at construction.
type TimeWindow struct {
	Start int
	End   int
}

// NewTimeWindow validates both endpoints and their ordering.
func NewTimeWindow(start, end int) (TimeWindow, error) {
	if err := validateHHMMSS(start); err != nil {
		return TimeWindow{}, fmt.Errorf("window start: %w", err)
	}
	if err := validateHHMMSS(end); err != nil {
		return TimeWindow{}, fmt.Errorf("window end: %w", err)
	}
	if start > end {
		return TimeWindow{}, fmt.Errorf("window start %06d after end %06d: cross-midnight windows are not supported", start, end)
	}
	return TimeWindow{Start: start, End: end}, nil
}

// ParseTimeWindow builds a TimeWindow from two 6-digit HHMMSS strings.
func ParseTimeWindow(start, end string) (TimeWindow, error) {
	s, err := parseHHMMSS(start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("window start: %w", err)
	}
	e, err := parseHHMMSS(end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("window end: %w", err)
	}
	return NewTimeWindow(s, e)
}

// Contains reports whether hhmmss falls inside the window, boundary-inclusive
// at both ends.
func (w TimeWindow) Contains(hhmmss int) bool {
	return hhmmss >= w.Start && hhmmss <= w.End
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%06d,%06d]", w.Start, w.End)
}

func parseHHMMSS(s string) (int, error) {
	if len(s) != 6 {
		return 0, fmt.Errorf("want 6-digit HHMMSS, got %q", s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("want 6-digit HHMMSS, got %q", s)
	}
	return v, nil
}

func validateHHMMSS(v int) error {
	if v < 0 || v > 235959 {
		return fmt.Errorf("%06d out of HHMMSS range", v)
	}
	mm := v / 100 % 100
	ss := v % 100
	if mm > 59 || ss > 59 {
		return fmt.Errorf("%06d has invalid minute or second field", v)
	}
	return nil
}
