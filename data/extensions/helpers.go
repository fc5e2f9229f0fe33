package extensions

import (
	"time"
)

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// FilterMultiplePtr return all pointers that satisfy the predicate
func FilterMultiplePtr[T any](elements []*T, predicate func(*T) bool) (results []*T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// CountWhere counts the elements that satisfy the predicate
func CountWhere[T any](elements []T, predicate func(T) bool) (count int) {
	for _, element := range elements {
		if predicate(element) {
			count++
		}
	}
	return
}

// FmtShort formats a time in a date only string
func FmtShort(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DateOf drops the clock part of t, keeping the calendar date in t's location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func Min[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}
