// Package hitime implements the exact-rational high-resolution time type
// used across the frame header engine and the DOT clock, plus the
// non-integer-frame-rate lookup table and the Mark4/VLBA sub-millisecond
// correction table (kept out of internal/headers per the design note
// separating header field extraction from time-code interpretation).
package hitime

import (
	"fmt"
	"math/big"
)

// Time is an exact-rational instant: an integer second count plus a
// fractional-second remainder expressed as a big.Rat in [0, 1).
type Time struct {
	Seconds  int64
	Fraction big.Rat
}

// New builds a Time from a second count and a fractional numerator/
// denominator pair (e.g. frame number / frames-per-second).
func New(seconds int64, fracNum, fracDen int64) Time {
	var t Time
	t.Seconds = seconds
	t.Fraction.SetFrac64(fracNum, fracDen)
	t.normalize()
	return t
}

func (t *Time) normalize() {
	one := big.NewRat(1, 1)
	for t.Fraction.Cmp(one) >= 0 {
		t.Fraction.Sub(&t.Fraction, one)
		t.Seconds++
	}
	zero := big.NewRat(0, 1)
	for t.Fraction.Cmp(zero) < 0 {
		t.Fraction.Add(&t.Fraction, one)
		t.Seconds--
	}
}

// String renders the time as "seconds+num/den".
func (t Time) String() string {
	return fmt.Sprintf("%d+%s", t.Seconds, t.Fraction.RatString())
}

// Equal reports whether two times denote the identical instant.
func (t Time) Equal(o Time) bool {
	return t.Seconds == o.Seconds && t.Fraction.Cmp(&o.Fraction) == 0
}

// FractionTable precomputes, for a nominal rate with denominator period y
// (frames per second = x/y in lowest terms is not required; y is simply the
// recurring period of the fractional part), the map from "numerator mod
// period" to integer second offset. No header codec in internal/headers
// consults it: their EncodeTime methods derive the frame number directly
// from the fraction.
type FractionTable struct {
	period int64
	table  map[int64]int64
}

// NewFractionTable builds the lookup table for a period of y frames (the
// denominator of the nominal frame rate once reduced to lowest terms).
func NewFractionTable(period int64) *FractionTable {
	ft := &FractionTable{period: period, table: make(map[int64]int64, period)}
	for numerator := int64(0); numerator < period; numerator++ {
		// Integer second offset contributed by numerator/period seconds,
		// floored; this is the "how many whole seconds has this fractional
		// frame position drifted past" table entry.
		ft.table[numerator] = numerator / period
	}
	return ft
}

// Lookup returns the integer second offset for a frame numerator modulo the
// table's period.
func (ft *FractionTable) Lookup(numerator int64) int64 {
	return ft.table[((numerator%ft.period)+ft.period)%ft.period]
}

// Period returns the table's recurring period.
func (ft *FractionTable) Period() int64 {
	return ft.period
}
