package internal

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// RoundToFiveMinutes rounds t onto the five-minute grid, dropping seconds.
// Minutes with remainder two or more round up, so minute 12 rounds to 15
// and minutes 57-59 carry into minute 0 of the next hour.
func RoundToFiveMinutes(t time.Time) time.Time {
	rounded := ((t.Minute() + 3) / 5) * 5
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return base.Add(time.Duration(rounded) * time.Minute)
}

// seededRand returns a rand.Rand keyed by a stable string seed. All
// "random" choices in the pipeline go through this so reruns on unchanged
// input are byte-identical.
func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// SeededJitter returns a deterministic minute offset in [-spread, +spread]
// derived from the seed string.
func SeededJitter(seed string, spread int) time.Duration {
	if spread <= 0 {
		return 0
	}
	r := seededRand(seed)
	return time.Duration(r.Intn(2*spread+1)-spread) * time.Minute
}

// Break is a non-working window inside a session envelope. Breaks reduce
// declared work hours but never change the session's start/end.
type Break struct {
	Kind     string // "lunch", "dinner"
	Start    time.Time
	Duration time.Duration
}

// End returns the end of the break window
func (b Break) End() time.Time {
	return b.Start.Add(b.Duration)
}

// LunchBreak generates the deterministic lunch window for a session day.
// Start is one of 12:00, 12:15, 12:30; duration is 25-40 minutes.
func LunchBreak(day time.Time, seed string) Break {
	r := seededRand(seed + ":lunch")
	startMinutes := []int{0, 15, 30}
	start := time.Date(day.Year(), day.Month(), day.Day(), 12, startMinutes[r.Intn(len(startMinutes))], 0, 0, day.Location())
	dur := time.Duration(25+r.Intn(16)) * time.Minute
	return Break{Kind: "lunch", Start: start, Duration: dur}
}

// DinnerBreak generates the deterministic dinner window for a session day.
// Start lands on the five-minute grid between 17:30 and 18:15; duration is
// 30-50 minutes on the same grid.
func DinnerBreak(day time.Time, seed string) Break {
	r := seededRand(seed + ":dinner")
	// 17:30 .. 18:15 in five-minute steps: ten candidate slots
	start := time.Date(day.Year(), day.Month(), day.Day(), 17, 30, 0, 0, day.Location())
	start = start.Add(time.Duration(r.Intn(10)*5) * time.Minute)
	dur := time.Duration(30+r.Intn(5)*5) * time.Minute
	return Break{Kind: "dinner", Start: start, Duration: dur}
}

// EndOfDay returns 23:59:59 on the day of t, used when truncating sessions
// that cross midnight.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Overlap returns the duration shared by the intervals [aStart, aEnd] and
// [bStart, bEnd], or zero when they do not intersect.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start)
}
