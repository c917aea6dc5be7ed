package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jackwu/callview/model"
	"github.com/jackwu/callview/query"
)

// filterForm field indices
const (
	fieldCallType = iota
	fieldPeriod
	fieldRange
	fieldCount
)

var (
	callTypeOptions = []model.CallType{model.CallTypeAll, model.CallTypeInbound, model.CallTypeOutbound}
	periodOptions   = []query.DateFilter{query.LastThree, query.Week, query.Month, query.Year, query.Custom}
)

type filterForm struct {
	callType   model.CallType
	period     query.DateFilter
	rangeInput textinput.Model
	focus      int
	invalid    bool // last submitted range did not parse
}

func newFilterForm(f query.Filter, rangeText string) filterForm {
	ri := textinput.New()
	ri.Placeholder = "__.__.__-__.__.__"
	ri.CharLimit = len(query.RangeMask)
	ri.SetValue(rangeText)
	ri.CursorEnd()

	return filterForm{
		callType:   f.CallType,
		period:     f.Date,
		rangeInput: ri,
		focus:      fieldCallType,
	}
}

func (m Model) enterFilterForm(focus int) (tea.Model, tea.Cmd) {
	f := newFilterForm(m.filter, m.rangeText)
	f.focus = focus
	if focus == fieldRange {
		f.period = query.Custom
	}
	f.focusCurrent()
	m.form = &f
	m.mode = modeFilter
	return m, nil
}

func (m Model) updateFilterForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	key := msg.String()

	switch key {
	case "esc":
		m.form = nil
		m.mode = modeList
		return m, nil

	case "tab", "down":
		f.blurCurrent()
		f.focus = (f.focus + 1) % fieldCount
		f.focusCurrent()
		return m, nil

	case "shift+tab", "up":
		f.blurCurrent()
		f.focus = (f.focus - 1 + fieldCount) % fieldCount
		f.focusCurrent()
		return m, nil

	case "enter":
		return m.submitFilterForm()
	}

	switch f.focus {
	case fieldCallType:
		switch key {
		case "left", "h":
			f.callType = cycle(callTypeOptions, f.callType, -1)
		case "right", "l":
			f.callType = cycle(callTypeOptions, f.callType, 1)
		}
	case fieldPeriod:
		switch key {
		case "left", "h":
			f.period = cycle(periodOptions, f.period, -1)
		case "right", "l":
			f.period = cycle(periodOptions, f.period, 1)
		}
	case fieldRange:
		prev := f.rangeInput.Value()
		var cmd tea.Cmd
		f.rangeInput, cmd = f.rangeInput.Update(msg)
		if v := f.rangeInput.Value(); v != prev {
			if query.MaskRange(v) != nil {
				f.rangeInput.SetValue(query.ApplyRangeMask(v))
				f.rangeInput.CursorEnd()
			}
			f.period = query.Custom
			f.invalid = false
		}
		return m, cmd
	}

	return m, nil
}

// submitFilterForm commits the form. A custom range that does not parse
// keeps the form open and leaves the active filter untouched.
func (m Model) submitFilterForm() (tea.Model, tea.Cmd) {
	f := m.form
	next := m.filter
	next.CallType = f.callType
	next.Date = f.period

	rangeText := m.rangeText
	if f.period == query.Custom {
		text := f.rangeInput.Value()
		r, err := query.ParseRange(text)
		if err != nil {
			m.logger.WithError(err).WithField("range", text).Debug("Rejected custom range")
			f.invalid = true
			return m, nil
		}
		next.Range = r
		rangeText = r.String()
	}

	m.form = nil
	m.mode = modeList
	m.filter = next
	m.rangeText = rangeText
	return m, m.refetch()
}

func cycle[T comparable](options []T, cur T, step int) T {
	for i, o := range options {
		if o == cur {
			return options[(i+step+len(options))%len(options)]
		}
	}
	return options[0]
}

func (f *filterForm) blurCurrent() {
	if f.focus == fieldRange {
		f.rangeInput.Blur()
	}
}

func (f *filterForm) focusCurrent() {
	if f.focus == fieldRange {
		f.rangeInput.Focus()
		f.rangeInput.CursorEnd()
	}
}

func (m Model) viewFilterForm() string {
	f := m.form

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(1, 2).
		Width(72)

	titleStr := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Render("Фильтры")

	typeLabels := make([]string, len(callTypeOptions))
	for i, t := range callTypeOptions {
		typeLabels[i] = t.Label()
	}
	periodLabels := make([]string, len(periodOptions))
	for i, p := range periodOptions {
		periodLabels[i] = p.Label()
	}

	typeLabel := m.fieldLabel("Тип:", f.focus == fieldCallType)
	typeValue := m.renderRadio(typeLabels, indexOf(callTypeOptions, f.callType), f.focus == fieldCallType)

	periodLabel := m.fieldLabel("Период:", f.focus == fieldPeriod)
	periodValue := m.renderRadio(periodLabels, indexOf(periodOptions, f.period), f.focus == fieldPeriod)

	rangeLabel := m.fieldLabel("Даты:", f.focus == fieldRange)
	rangeValue := f.rangeInput.View()
	if f.invalid {
		rangeValue += "  " + errorStyle.Render("Неверный диапазон дат")
	}

	content := fmt.Sprintf(
		"%s\n\n%s  %s\n\n%s  %s\n\n%s  %s\n\n%s",
		titleStr,
		typeLabel, typeValue,
		periodLabel, periodValue,
		rangeLabel, rangeValue,
		dimStyle.Render("Enter: применить  Esc: отмена  Tab: поле  ←→: выбор"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

func indexOf[T comparable](options []T, v T) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return -1
}

func (m Model) fieldLabel(label string, focused bool) string {
	style := lipgloss.NewStyle().Width(8)
	if focused {
		style = style.Bold(true).Foreground(lipgloss.Color("39"))
	} else {
		style = style.Foreground(lipgloss.Color("252"))
	}
	return style.Render(label)
}

func (m Model) renderRadio(options []string, selected int, focused bool) string {
	var parts []string
	for i, opt := range options {
		if i == selected {
			style := lipgloss.NewStyle().Bold(true)
			if focused {
				style = style.Foreground(lipgloss.Color("39"))
			} else {
				style = style.Foreground(lipgloss.Color("255"))
			}
			parts = append(parts, style.Render("● "+opt))
		} else {
			parts = append(parts, dimStyle.Render("○ "+opt))
		}
	}
	return strings.Join(parts, "  ")
}
