package query

import (
	"errors"
	"time"
)

// DateLayout is the format of date_start and date_end.
const DateLayout = "2006-01-02"

// DateFilter is the active date window.
type DateFilter int

const (
	LastThree DateFilter = iota
	Week
	Month
	Year
	Custom
)

// ErrCustomPeriod is returned by ResolvePeriod for the Custom filter, whose
// bounds come from the stored range instead.
var ErrCustomPeriod = errors.New("custom period has no relative window")

// Period is a resolved pair of calendar dates.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) StartString() string { return p.Start.Format(DateLayout) }
func (p Period) EndString() string   { return p.End.Format(DateLayout) }

// ResolvePeriod returns the trailing window for a relative filter. The end
// is today. The start is the end of today moved back by the window and
// forward by one second, so the window never reaches into the day that
// closes the previous period.
func ResolvePeriod(f DateFilter, now time.Time) (Period, error) {
	endOfToday := endOfDay(now)

	var start time.Time
	switch f {
	case LastThree:
		start = endOfToday.AddDate(0, 0, -3)
	case Week:
		start = endOfToday.AddDate(0, 0, -7)
	case Month:
		start = addMonths(endOfToday, -1)
	case Year:
		start = addMonths(endOfToday, -12)
	case Custom:
		return Period{}, ErrCustomPeriod
	default:
		return Period{}, errors.New("unknown date filter")
	}
	start = start.Add(time.Second)

	return Period{
		Start: truncateDay(start),
		End:   truncateDay(endOfToday),
	}, nil
}

// Label is the text shown on the date filter trigger.
func (f DateFilter) Label() string {
	switch f {
	case LastThree:
		return "3 дня"
	case Week:
		return "Неделя"
	case Month:
		return "Месяц"
	case Year:
		return "Год"
	case Custom:
		return "Указать даты"
	default:
		return "Неизвестный фильтр"
	}
}

// Next and Prev step through the relative filters. Custom steps back into
// the relative ones.
func (f DateFilter) Next() DateFilter {
	switch f {
	case LastThree:
		return Week
	case Week:
		return Month
	case Month:
		return Year
	default:
		return LastThree
	}
}

func (f DateFilter) Prev() DateFilter {
	switch f {
	case Year:
		return Month
	case Month:
		return Week
	case Week:
		return LastThree
	default:
		return Year
	}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addMonths moves t by n calendar months, clamping the day to the last day
// of the target month (Mar 31 - 1 month = Feb 28/29). time.AddDate would
// normalize the overflow into the following month instead.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
