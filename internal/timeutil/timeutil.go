// Package timeutil holds the single business-timezone conversion point.
// The shop runs on a fixed UTC+3 wall clock (no DST); appointments are
// stored as UTC instants. All local/UTC conversions go through here.
package timeutil

import "time"

// Location is the fixed business time zone.
var Location = time.FixedZone("TRT", 3*60*60)

// ToBusiness converts an instant to business-local wall clock.
func ToBusiness(t time.Time) time.Time {
	return t.In(Location)
}

// Midnight truncates an instant to business-local midnight.
func Midnight(t time.Time) time.Time {
	local := t.In(Location)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Location)
}

// At combines a business-local date with a wall-clock time of day into an
// instant. The fixed offset makes the plain Add safe.
func At(localDate time.Time, tod TimeOfDay) time.Time {
	return Midnight(localDate).Add(time.Duration(tod) * time.Minute)
}

// SameBusinessDate reports whether two instants fall on the same
// business-local calendar day.
func SameBusinessDate(a, b time.Time) bool {
	ay, am, ad := a.In(Location).Date()
	by, bm, bd := b.In(Location).Date()
	return ay == by && am == bm && ad == bd
}

// BusinessWeekday returns the day of week (0=Sunday..6=Saturday) of the
// instant in business-local terms.
func BusinessWeekday(t time.Time) int {
	return int(t.In(Location).Weekday())
}

// Clock supplies the current UTC instant. Services take it instead of
// calling time.Now so tests can pin the moment.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the given instant.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
