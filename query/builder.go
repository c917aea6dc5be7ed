package query

import (
	"net/url"
	"strings"
	"time"

	"github.com/jackwu/callview/model"
)

// Filter is the user's current filter selection. Range is only read when
// Date is Custom.
type Filter struct {
	CallType model.CallType
	Date     DateFilter
	Range    Range
}

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params keeps parameters in the order they were added.
type Params []Param

func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Encode renders the parameters as a query string, keeping their order.
func (p Params) Encode() string {
	parts := make([]string, 0, len(p))
	for _, kv := range p {
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(kv.Value))
	}
	return strings.Join(parts, "&")
}

// Build maps the filter and sort state to list request parameters:
// direction, then the date window, then sorting.
func Build(f Filter, s Sort, now time.Time) (Params, error) {
	var p Params

	if v, ok := f.CallType.Param(); ok {
		p = p.Add("in_out", v)
	}

	var period Period
	if f.Date == Custom {
		period = f.Range.Period()
	} else {
		var err error
		if period, err = ResolvePeriod(f.Date, now); err != nil {
			return nil, err
		}
	}
	p = p.Add("date_start", period.StartString())
	p = p.Add("date_end", period.EndString())

	if s.Active() {
		p = p.Add("sort_by", s.Axis.Field())
		p = p.Add("order", string(s.Dir))
	}

	return p, nil
}
