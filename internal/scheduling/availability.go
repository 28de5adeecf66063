// Package scheduling contains the pure computation core: resolving a
// host's open windows for a day, merging busy time, generating candidate
// slots and filtering them against conflicts and capacity. Everything here
// is a pure function of its inputs and safe to run with unbounded
// concurrency; the commit path re-validates against current store state.
package scheduling

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

var (
	// ErrInvalidRule is returned for a malformed availability rule.
	// Rules are rejected at write time; the read path assumes stored
	// rules are well-formed.
	ErrInvalidRule = errors.New("scheduling: invalid availability rule")
)

// ValidateRule checks a weekly availability rule before it is stored
func ValidateRule(rule *domain.WeeklyAvailabilityRule) error {
	if rule.Weekday < time.Sunday || rule.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be 0-6, got %d", ErrInvalidRule, rule.Weekday)
	}
	if rule.StartMinute < 0 || rule.EndMinute > domain.MinutesPerDay {
		return fmt.Errorf("%w: window must lie within the day", ErrInvalidRule)
	}
	if rule.StartMinute >= rule.EndMinute {
		return fmt.Errorf("%w: start %d must be before end %d", ErrInvalidRule, rule.StartMinute, rule.EndMinute)
	}
	return nil
}

// ValidateException checks a date exception before it is stored
func ValidateException(exc *domain.DateException) error {
	if exc.Date.IsZero() {
		return fmt.Errorf("%w: exception date is required", ErrInvalidRule)
	}
	if exc.Unavailable {
		return nil
	}
	if exc.StartMinute == nil || exc.EndMinute == nil {
		return fmt.Errorf("%w: exception needs either unavailable flag or a replacement window", ErrInvalidRule)
	}
	if *exc.StartMinute < 0 || *exc.EndMinute > domain.MinutesPerDay {
		return fmt.Errorf("%w: window must lie within the day", ErrInvalidRule)
	}
	if *exc.StartMinute >= *exc.EndMinute {
		return fmt.Errorf("%w: start %d must be before end %d", ErrInvalidRule, *exc.StartMinute, *exc.EndMinute)
	}
	return nil
}

// ResolveDayWindows computes the ordered open windows of one host-local
// calendar day. An exception for the date fully replaces the weekly rules:
// an unavailable exception yields no windows, a replacement window yields
// exactly that window. Otherwise all rules matching the weekday are
// unioned, with overlapping and touching ranges merged.
func ResolveDayWindows(date time.Time, rules []*domain.WeeklyAvailabilityRule, exceptions []*domain.DateException) []domain.TimeWindow {
	for _, exc := range exceptions {
		if !sameDate(exc.Date, date) {
			continue
		}
		if window, ok := exc.Window(); ok {
			return []domain.TimeWindow{window}
		}
		return nil
	}

	weekday := date.Weekday()
	windows := make([]domain.TimeWindow, 0, len(rules))
	for _, rule := range rules {
		if rule.Weekday == weekday {
			windows = append(windows, rule.Window())
		}
	}

	return mergeWindows(windows)
}

// mergeWindows merges overlapping and adjacent windows into a sorted,
// disjoint list
func mergeWindows(windows []domain.TimeWindow) []domain.TimeWindow {
	if len(windows) == 0 {
		return nil
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].StartMinute == windows[j].StartMinute {
			return windows[i].EndMinute < windows[j].EndMinute
		}
		return windows[i].StartMinute < windows[j].StartMinute
	})

	merged := []domain.TimeWindow{windows[0]}
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.StartMinute <= last.EndMinute {
			if w.EndMinute > last.EndMinute {
				last.EndMinute = w.EndMinute
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// sameDate compares calendar dates ignoring the time of day
func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
