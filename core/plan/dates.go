package plan

import "time"

// DistributeDates computes one scheduled date per task, evenly spaced
// between start and due.
//
// totalDays = floor((due - start) / 24h). When totalDays < 1 (due today
// or in the past) every task lands on start; a degenerate-input policy,
// not an error. Otherwise task i (0-based) is offset by
// floor(totalDays/(n+1)*(i+1)) days from start, yielding a
// non-decreasing sequence that never precedes start and only reaches due
// when n is large relative to the span. Ties are expected when n exceeds
// totalDays.
func DistributeDates(start, due time.Time, n int) []time.Time {
	dates := make([]time.Time, n)

	totalDays := int(due.Sub(start).Hours() / 24)
	if totalDays < 1 {
		for i := range dates {
			dates[i] = start
		}
		return dates
	}

	for i := range dates {
		dayOffset := totalDays * (i + 1) / (n + 1)
		dates[i] = start.AddDate(0, 0, dayOffset)
	}
	return dates
}
