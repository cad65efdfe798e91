package reports

import (
	"fmt"
	"strings"
	"time"

	"smartstock/internal/models"
)

type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Custom  Period = "custom"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Daily, Weekly, Monthly, Custom:
		return p, nil
	case "":
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown report period %q", s)
}

// Range is an inclusive pair of YYYY-MM-DD dates. ISO dates sort
// lexicographically in calendar order, so plain string comparison is enough.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r Range) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// Today formats now as a calendar date in now's location.
func Today(now time.Time) string {
	return now.Format(models.DateLayout)
}

// DateRange resolves a period against the reference instant ref.
//
//	daily   -> [ref, ref]
//	weekly  -> [ref - 7 days, ref]
//	monthly -> [1st of ref's month, ref]
//	custom  -> custom, with an empty bound replaced by ref's date
func DateRange(period Period, ref time.Time, custom Range) Range {
	end := Today(ref)
	y, m, d := ref.Date()
	switch period {
	case Daily:
		return Range{Start: end, End: end}
	case Weekly:
		return Range{Start: Today(time.Date(y, m, d-7, 0, 0, 0, 0, ref.Location())), End: end}
	case Monthly:
		return Range{Start: Today(time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())), End: end}
	}
	r := custom
	if r.Start == "" {
		r.Start = end
	}
	if r.End == "" {
		r.End = end
	}
	return r
}
