package clock

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the accepted --date format.
	DateLayout = "02/01/2006"
	// TimeLayout is the accepted --time format.
	TimeLayout = "15:04"
	// DefaultLead is how far ahead the picker starts.
	DefaultLead = time.Minute
)

// errConflictingPick is returned when --in is combined with --date or --time.
var errConflictingPick = errors.New("--in cannot be combined with --date or --time")

// Pick is the user's date and time selection. Empty fields keep the picker default.
type Pick struct {
	// Date is a day in DateLayout.
	Date string
	// Time is a wall clock time in TimeLayout.
	Time string
	// In is a delay from now. It excludes Date and Time.
	In time.Duration
}

// Resolve turns the pick into an instant in now's location. The picker starts
// at now plus DefaultLead, so an empty pick schedules one minute ahead.
// The result is not checked against now; the daemon rejects past instants.
func (p Pick) Resolve(now time.Time) (time.Time, error) {
	if p.In != 0 {
		if p.Date != "" || p.Time != "" {
			return time.Time{}, errConflictingPick
		}

		return now.Add(p.In), nil
	}

	initial := now.Add(DefaultLead)
	year, month, day := initial.Date()
	hour, minute := initial.Hour(), initial.Minute()

	if p.Date != "" {
		d, err := time.ParseInLocation(DateLayout, p.Date, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", p.Date, err)
		}

		year, month, day = d.Date()
	}

	if p.Time != "" {
		t, err := time.ParseInLocation(TimeLayout, p.Time, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("parse time %q: %w", p.Time, err)
		}

		hour, minute = t.Hour(), t.Minute()
	}

	return time.Date(year, month, day, hour, minute, 0, 0, now.Location()), nil
}
