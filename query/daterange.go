package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RangeLayout is the layout of one half of a custom range, DD.MM.YY.
const RangeLayout = "02.01.06"

// RangeMask is the input mask of a full custom range. '9' is a digit slot.
const RangeMask = "99.99.99-99.99.99"

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrRangeFormat  = fmt.Errorf("%w: expected DD.MM.YY-DD.MM.YY", ErrInvalidRange)
	ErrRangeDate    = fmt.Errorf("%w: not a calendar date", ErrInvalidRange)
	ErrRangeOrder   = fmt.Errorf("%w: start must be before end", ErrInvalidRange)
)

// Range is an explicit pair of calendar dates entered by the user.
type Range struct {
	Start time.Time
	End   time.Time
}

// Period converts the range to the form used for query parameters.
func (r Range) Period() Period {
	return Period{Start: truncateDay(r.Start), End: truncateDay(r.End)}
}

// String formats the range back into the input form.
func (r Range) String() string {
	return r.Start.Format(RangeLayout) + "-" + r.End.Format(RangeLayout)
}

// ParseRange parses "DD.MM.YY-DD.MM.YY". Both halves must be real dates and
// the first must be strictly before the second.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	start, end, ok := strings.Cut(s, "-")
	if !ok || len(start) != len(RangeLayout) || len(end) != len(RangeLayout) {
		return Range{}, ErrRangeFormat
	}

	from, err := time.ParseInLocation(RangeLayout, start, time.Local)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrRangeDate, start)
	}
	to, err := time.ParseInLocation(RangeLayout, end, time.Local)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrRangeDate, end)
	}
	if !from.Before(to) {
		return Range{}, ErrRangeOrder
	}
	return Range{Start: from, End: to}, nil
}

// MaskRange accepts any prefix of a string that fits RangeMask. It is used
// as the validator of the range text input.
func MaskRange(s string) error {
	if len(s) > len(RangeMask) {
		return ErrRangeFormat
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if RangeMask[i] == '9' {
			if c < '0' || c > '9' {
				return ErrRangeFormat
			}
			continue
		}
		if c != RangeMask[i] {
			return ErrRangeFormat
		}
	}
	return nil
}

// ApplyRangeMask lays the digits of s into RangeMask, adding separators
// and dropping everything else.
func ApplyRangeMask(s string) string {
	var b strings.Builder
	i := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		for i < len(RangeMask) && RangeMask[i] != '9' {
			b.WriteByte(RangeMask[i])
			i++
		}
		if i >= len(RangeMask) {
			break
		}
		b.WriteRune(r)
		i++
	}
	return b.String()
}
