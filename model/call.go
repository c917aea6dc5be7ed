package model

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Layouts used by the list endpoint.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

// Call is one entry of the call log as returned by the list endpoint.
type Call struct {
	ID            int        `json:"id"`
	PartnershipID FlexString `json:"partnership_id"`
	Date          string     `json:"date"`        // date and time of the call
	DateNoTime    string     `json:"date_notime"` // group key
	Duration      int        `json:"time"`        // seconds
	InOut         Direction  `json:"in_out"`
	Source        string     `json:"source"`
	PersonAvatar  string     `json:"person_avatar"`
	FromNumber    string     `json:"from_number"`
	ToNumber      string     `json:"to_number"`
	Rating        Rating     `json:"rating"`
	Status        string     `json:"status"`
	Record        string     `json:"record"` // empty when there is no recording
}

// ListResponse is the body of the list endpoint.
type ListResponse struct {
	Results   []Call  `json:"results"`
	TotalRows FlexInt `json:"total_rows"`
}

// Time parses Date in the server's layout. A zero time is returned when
// the value cannot be parsed.
func (c Call) Time() time.Time {
	t, err := time.ParseInLocation(DateTimeLayout, c.Date, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Day parses DateNoTime.
func (c Call) Day() time.Time {
	t, err := time.ParseInLocation(DateLayout, c.DateNoTime, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Inbound reports whether the call was received.
func (c Call) Inbound() bool {
	return bool(c.InOut)
}

// PartnerNumber returns the counterpart's number: the caller for inbound
// calls, the callee for outbound ones.
func (c Call) PartnerNumber() string {
	if c.Inbound() {
		return c.FromNumber
	}
	return c.ToNumber
}

// HasRecord reports whether a recording can be fetched for the call.
func (c Call) HasRecord() bool {
	return c.Record != ""
}

// Direction is the in_out flag. The server sends either a JSON boolean or
// 0/1, so both are accepted.
type Direction bool

func (d *Direction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		return nil
	case "true", "1", `"1"`:
		*d = true
		return nil
	case "false", "0", `"0"`, `""`:
		*d = false
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Direction(v)
	return nil
}

func (d Direction) MarshalJSON() ([]byte, error) {
	if d {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("partnership id: %w", err)
	}
	*s = FlexString(data)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		data = data[1 : len(data)-1]
		if len(data) == 0 {
			*i = 0
			return nil
		}
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*i = FlexInt(v)
	return nil
}
