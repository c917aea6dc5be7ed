package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jackwu/callview/player"
)

func (m Model) enterDetail() (tea.Model, tea.Cmd) {
	c, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.detailCall = c
	m.detailOffset = 0
	m.mode = modeDetail
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeList
		return m, nil

	case "ctrl+c":
		m.shutdown()
		m.quitting = true
		return m, tea.Quit

	case " ":
		return m.togglePlayback(m.detailCall)

	case "up", "k":
		m.detailScrollUp(1)
	case "down", "j":
		m.detailScrollDown(1)
	case "pgup", "u":
		m.detailScrollUp(m.detailVisibleRows())
	case "pgdown", "d":
		m.detailScrollDown(m.detailVisibleRows())
	case "home", "g":
		m.detailOffset = 0
	case "end", "G":
		m.detailScrollToBottom()
	}

	return m, nil
}

func (m Model) viewDetail() string {
	var b strings.Builder
	c := m.detailCall

	kind := "Исходящий звонок"
	if c.Inbound() {
		kind = "Входящий звонок"
	}
	b.WriteString(detailTitleStyle.Render(fmt.Sprintf("%s %s · %s", DirectionIcon(c), kind, PhoneFor(c))))
	b.WriteString("\n")

	lines := m.detailLines()
	visible := m.detailVisibleRows()
	end := m.detailOffset + visible
	if end > len(lines) {
		end = len(lines)
	}
	for i := m.detailOffset; i < end; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	for i := end - m.detailOffset; i < visible; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("  Esc: назад  Space: запись  j/k: прокрутка"))
	return b.String()
}

// detailLines renders the selected call as label/value lines.
func (m Model) detailLines() []string {
	c := m.detailCall
	field := func(label, value string) string {
		return "  " + detailLabelStyle.Render(label) + value
	}

	date := GroupDate(c.DateNoTime) + " " + CallTime(c)
	lines := []string{
		"",
		field("Дата", date),
		field("Звонок", PhoneFor(c)),
		field("Откуда", plusNumber(c.FromNumber)),
		field("Куда", plusNumber(c.ToNumber)),
		field("Источник", SourceFor(c)),
		field("Оценка", ratingStyle(c.Rating).Render(c.Rating.Label())),
		field("Статус", orDash(c.Status)),
		field("Сотрудник", AvatarFor(c, m.rowOpts.DefaultAvatar)),
	}

	if !c.HasRecord() {
		return append(lines, field("Длительность", Seconds(c.Duration)))
	}

	lines = append(lines,
		field("Длительность", Clock(c.Duration)),
		field("Запись", c.Record),
		field("Партнёр", c.PartnershipID.String()),
		"",
		field("Плеер", m.playbackLine()),
	)
	return lines
}

func (m Model) playbackLine() string {
	p := m.players[m.detailCall.ID]
	if p == nil {
		return "▶ " + progressBar(0, 30)
	}
	switch p.State() {
	case player.Loading:
		return "… " + progressBar(0, 30) + dimStyle.Render("  загрузка")
	case player.Playing:
		return fmt.Sprintf("⏸ %s  %d%%", progressBar(p.Progress(), 30), p.Progress())
	default:
		return "▶ " + progressBar(0, 30)
	}
}

func plusNumber(n string) string {
	if n == "" {
		return "-"
	}
	return "+" + n
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) detailVisibleRows() int {
	// title bar + bottom bar = 2 lines
	rows := m.height - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) detailScrollUp(n int) {
	m.detailOffset -= n
	if m.detailOffset < 0 {
		m.detailOffset = 0
	}
}

func (m *Model) detailScrollDown(n int) {
	m.detailOffset += n
	if maxOffset := m.detailMaxOffset(); m.detailOffset > maxOffset {
		m.detailOffset = maxOffset
	}
}

func (m *Model) detailScrollToBottom() {
	m.detailOffset = m.detailMaxOffset()
}

func (m Model) detailMaxOffset() int {
	return max(0, len(m.detailLines())-m.detailVisibleRows())
}
