// Package schedule holds effect batches that fire after a delay.
package schedule

import (
	"sort"

	"github.com/nathoo/gitquest/types"
)

// Queue is a clock plus the deferred batches waiting on it. Every entry is
// tagged with the level attempt that scheduled it; entries from any other
// attempt are discarded instead of fired.
type Queue struct {
	now   float64
	items []types.Deferred
}

// New returns an empty queue at time zero.
func New() *Queue {
	return &Queue{}
}

// Now returns the queue clock in seconds.
func (q *Queue) Now() float64 {
	return q.now
}

// Len returns the number of waiting entries.
func (q *Queue) Len() int {
	return len(q.items)
}

// Add schedules d to fire delay seconds from now.
func (q *Queue) Add(delay float64, d types.Deferred) {
	if delay < 0 {
		delay = 0
	}
	d.At = q.now + delay
	q.items = append(q.items, d)
}

// Pending reports whether an entry with tag is waiting for attempt.
func (q *Queue) Pending(attempt int, tag string) bool {
	for _, d := range q.items {
		if d.Attempt == attempt && d.Tag == tag {
			return true
		}
	}
	return false
}

// Advance moves the clock by dt and returns the entries now due for
// attempt, earliest first. Entries from other attempts are dropped.
func (q *Queue) Advance(dt float64, attempt int) []types.Deferred {
	q.now += dt
	if len(q.items) == 0 {
		return nil
	}

	var due []types.Deferred
	keep := q.items[:0]
	for _, d := range q.items {
		switch {
		case d.Attempt != attempt:
			// stale
		case d.At <= q.now:
			due = append(due, d)
		default:
			keep = append(keep, d)
		}
	}
	q.items = keep

	sort.SliceStable(due, func(i, j int) bool { return due[i].At < due[j].At })
	return due
}

// Reset drops every entry. The clock keeps running.
func (q *Queue) Reset() {
	q.items = nil
}
