// Package taskview holds the pure view logic over tasks: bucketing a task
// against the calendar relative to a reference moment, and partitioning a
// task list into fixed status columns. Nothing here touches storage or the
// clock; callers pass "now" in explicitly.
package taskview

import (
	"time"

	"taskboard/internal/model"
)

// Bucket is the temporal classification of a task relative to a reference
// moment. Granularity is the calendar day, not the wall-clock instant: a
// task due two hours ago still counts as today.
type Bucket int

const (
	// BucketNone covers tasks with no due date and tasks due strictly
	// before the start of today. They never match a positive filter but
	// are included in an unfiltered listing.
	BucketNone Bucket = iota
	BucketToday
	BucketTomorrow
	BucketUpcoming
)

func (b Bucket) String() string {
	switch b {
	case BucketToday:
		return "today"
	case BucketTomorrow:
		return "tomorrow"
	case BucketUpcoming:
		return "upcoming"
	default:
		return "none"
	}
}

// Filter names a date-window selection over tasks. FilterAll imposes no
// date predicate at all.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterToday    Filter = "today"
	FilterTomorrow Filter = "tomorrow"
	FilterUpcoming Filter = "upcoming"
)

// ParseFilter validates a filter name from the request path.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterAll, FilterToday, FilterTomorrow, FilterUpcoming:
		return Filter(s), true
	}
	return "", false
}

// midnight truncates t to the start of its calendar day, in t's location.
// All window boundaries derive from the same reference clock; the location
// of "now" is never mixed with another within one comparison.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Classify buckets a task's due date against now. Boundaries are half-open
// [start, end): a task due at exactly midnight tomorrow is TOMORROW, not
// TODAY.
func Classify(now time.Time, due *time.Time) Bucket {
	if due == nil {
		return BucketNone
	}

	todayStart := midnight(now)
	tomorrowStart := todayStart.AddDate(0, 0, 1)
	dayAfterStart := todayStart.AddDate(0, 0, 2)

	d := *due
	switch {
	case d.Before(todayStart):
		return BucketNone
	case d.Before(tomorrowStart):
		return BucketToday
	case d.Before(dayAfterStart):
		return BucketTomorrow
	default:
		return BucketUpcoming
	}
}

// Window returns the [from, to) due-date range for a filter, for use as a
// storage predicate. ok is false for FilterAll, which has no date predicate.
// An upcoming window is open-ended; its zero "to" means unbounded.
func Window(now time.Time, f Filter) (from, to time.Time, ok bool) {
	todayStart := midnight(now)
	switch f {
	case FilterToday:
		return todayStart, todayStart.AddDate(0, 0, 1), true
	case FilterTomorrow:
		return todayStart.AddDate(0, 0, 1), todayStart.AddDate(0, 0, 2), true
	case FilterUpcoming:
		return todayStart.AddDate(0, 0, 2), time.Time{}, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Matches reports whether a task belongs in the filtered view. Under
// FilterAll every task matches, including undated and past-due ones.
func Matches(now time.Time, f Filter, t *model.Task) bool {
	if f == FilterAll {
		return true
	}
	b := Classify(now, t.DueDate)
	switch f {
	case FilterToday:
		return b == BucketToday
	case FilterTomorrow:
		return b == BucketTomorrow
	case FilterUpcoming:
		return b == BucketUpcoming
	}
	return false
}
