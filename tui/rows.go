package tui

import (
	"fmt"
	"strings"

	"github.com/jackwu/callview/model"
	"github.com/jackwu/callview/store"
)

const (
	placeholderAvatar = "noavatar.jpg"
	defaultSource     = "Rabota.ru"
	groupDateLayout   = "02/01/2006"
	callTimeLayout    = "15:04"
)

// RowOptions controls how groups become rows.
type RowOptions struct {
	// SuppressFirstHeader hides the header of the first day group, so the
	// table starts right under the filter bar.
	SuppressFirstHeader bool
	// DefaultAvatar replaces placeholder avatars.
	DefaultAvatar string
}

type rowKind int

const (
	rowHeader rowKind = iota
	rowCall
)

// Row is one line of the call table: a day header or a call.
type Row struct {
	kind  rowKind
	Date  string // header: group date key
	Count int    // header: calls in the group
	Call  model.Call
}

func (r Row) IsHeader() bool { return r.kind == rowHeader }

// BuildRows walks groups in order, emitting a header per group (except the
// first when SuppressFirstHeader is set) followed by its calls.
func BuildRows(groups store.Groups, opts RowOptions) []Row {
	rows := make([]Row, 0, groups.Total()+len(groups))
	for i, g := range groups {
		if i > 0 || !opts.SuppressFirstHeader {
			rows = append(rows, Row{kind: rowHeader, Date: g.Date, Count: len(g.Calls)})
		}
		for _, c := range g.Calls {
			rows = append(rows, Row{kind: rowCall, Call: c})
		}
	}
	return rows
}

// AvatarFor returns the avatar to show for a call.
func AvatarFor(c model.Call, defaultAvatar string) string {
	if c.PersonAvatar == "" || strings.Contains(c.PersonAvatar, placeholderAvatar) {
		return defaultAvatar
	}
	return c.PersonAvatar
}

// PhoneFor is the counterpart number with a leading plus.
func PhoneFor(c model.Call) string {
	return "+" + c.PartnerNumber()
}

// SourceFor falls back to the default source label.
func SourceFor(c model.Call) string {
	if c.Source == "" {
		return defaultSource
	}
	return c.Source
}

// DirectionIcon is the glyph of the call direction.
func DirectionIcon(c model.Call) string {
	if c.Inbound() {
		return "↙"
	}
	return "↗"
}

// CallTime formats the time of day of a call.
func CallTime(c model.Call) string {
	t := c.Time()
	if t.IsZero() {
		return "--:--"
	}
	return t.Format(callTimeLayout)
}

// GroupDate formats a group key for its header.
func GroupDate(key string) string {
	c := model.Call{DateNoTime: key}
	d := c.Day()
	if d.IsZero() {
		return key
	}
	return d.Format(groupDateLayout)
}

// Seconds renders a duration without a recording, e.g. "64 сек".
func Seconds(sec int) string {
	return fmt.Sprintf("%d сек", sec)
}

// Clock renders a duration as mm:ss.
func Clock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// PlainRow renders a row without styling, for --list output.
func PlainRow(r Row, opts RowOptions) string {
	if r.IsHeader() {
		return fmt.Sprintf("%s (%d)", GroupDate(r.Date), r.Count)
	}
	c := r.Call
	duration := Seconds(c.Duration)
	if c.HasRecord() {
		duration = Clock(c.Duration) + " ▶"
	}
	return fmt.Sprintf("  %s │ %s │ %-16s │ %-14s │ %-10s │ %s │ %s",
		DirectionIcon(c), CallTime(c), PhoneFor(c), SourceFor(c), c.Rating.Label(), duration,
		AvatarFor(c, opts.DefaultAvatar))
}
