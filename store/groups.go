package store

import "github.com/jackwu/callview/model"

// Group is the calls of one day in response order.
type Group struct {
	Date  string // date_notime
	Calls []model.Call
}

// Groups is the call list partitioned by day, in first-seen order.
type Groups []Group

// GroupByDate partitions calls by their date_notime in one pass. Keys keep
// the order in which they first appear and calls keep their order within a
// key, so nothing is re-sorted on the client.
func GroupByDate(calls []model.Call) Groups {
	var groups Groups
	index := make(map[string]int)
	for _, c := range calls {
		i, ok := index[c.DateNoTime]
		if !ok {
			i = len(groups)
			index[c.DateNoTime] = i
			groups = append(groups, Group{Date: c.DateNoTime})
		}
		groups[i].Calls = append(groups[i].Calls, c)
	}
	return groups
}

// Keys returns the group dates in order.
func (g Groups) Keys() []string {
	keys := make([]string, len(g))
	for i, grp := range g {
		keys[i] = grp.Date
	}
	return keys
}

// Total is the number of calls across all groups.
func (g Groups) Total() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Calls)
	}
	return n
}

// Calls flattens the groups back into display order.
func (g Groups) Calls() []model.Call {
	out := make([]model.Call, 0, g.Total())
	for _, grp := range g {
		out = append(out, grp.Calls...)
	}
	return out
}
