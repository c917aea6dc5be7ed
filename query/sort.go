package query

// Direction is the order query value.
type Direction string

const (
	Unset Direction = ""
	Asc   Direction = "ASC"
	Desc  Direction = "DESC"
)

// SortAxis is the field the list is sorted by.
type SortAxis int

const (
	SortNone SortAxis = iota
	SortByTime
	SortByDuration
)

// Field returns the sort_by query value for the axis.
func (a SortAxis) Field() string {
	switch a {
	case SortByTime:
		return "date"
	case SortByDuration:
		return "duration"
	default:
		return ""
	}
}

// Sort holds at most one active sort axis. The zero value is unsorted.
type Sort struct {
	Axis SortAxis
	Dir  Direction
}

// Toggle activates axis a. An axis already sorted descending flips to
// ascending; anything else becomes descending. The other axis is dropped.
func (s Sort) Toggle(a SortAxis) Sort {
	if a == SortNone {
		return Sort{}
	}
	if s.Axis == a && s.Dir == Desc {
		return Sort{Axis: a, Dir: Asc}
	}
	return Sort{Axis: a, Dir: Desc}
}

// Time returns the direction of the time axis, Unset if it is not active.
func (s Sort) Time() Direction { return s.dir(SortByTime) }

// Duration returns the direction of the duration axis.
func (s Sort) Duration() Direction { return s.dir(SortByDuration) }

func (s Sort) dir(a SortAxis) Direction {
	if s.Axis != a {
		return Unset
	}
	return s.Dir
}

// Active reports whether any axis is set.
func (s Sort) Active() bool {
	return s.Axis != SortNone && s.Dir != Unset
}
