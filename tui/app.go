package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jackwu/callview/metrics"
	"github.com/jackwu/callview/model"
	"github.com/jackwu/callview/player"
	"github.com/jackwu/callview/query"
	"github.com/jackwu/callview/store"
)

type mode int

const (
	modeList mode = iota
	modeFilter
	modeDetail
)

// Source is the remote side of the viewer.
type Source interface {
	ListCalls(ctx context.Context, params query.Params) (*model.ListResponse, error)
	FetchRecord(ctx context.Context, record, partnershipID string) ([]byte, error)
}

// Options configures NewModel.
type Options struct {
	Source Source
	Runner player.Runner
	Logger *logrus.Logger
	Rows   RowOptions
	Filter query.Filter
	Now    func() time.Time
}

type Model struct {
	src     Source
	runner  player.Runner
	logger  *logrus.Logger
	now     func() time.Time
	rowOpts RowOptions

	store     *store.Store
	filter    query.Filter
	sort      query.Sort
	rangeText string // text of the committed custom range
	inflight  *inflight

	rows     []Row
	callRows []int // indices of call rows in rows
	cursor   int   // index into callRows
	offset   int   // scroll offset in rows
	width    int
	height   int
	mode     mode
	form     *filterForm
	players  map[int]*player.Controller

	detailCall   model.Call
	detailOffset int

	loading  bool
	spin     spinner.Model
	status   string
	quitting bool
}

func NewModel(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = dimStyle

	m := Model{
		src:      opts.Source,
		runner:   opts.Runner,
		logger:   opts.Logger,
		now:      opts.Now,
		rowOpts:  opts.Rows,
		store:    store.New(),
		filter:   opts.Filter,
		players:  make(map[int]*player.Controller),
		inflight: &inflight{},
		loading:  true,
		spin:     sp,
		width:    120,
		height:   30,
	}
	if m.filter.Date == query.Custom {
		m.rangeText = m.filter.Range.String()
	}
	return m
}

// inflight holds the cancel func of the list request in flight. It is
// shared by all copies of the model.
type inflight struct {
	cancel context.CancelFunc
}

func (f *inflight) replace(cancel context.CancelFunc) {
	if f.cancel != nil {
		f.cancel()
	}
	f.cancel = cancel
}

// callsLoadedMsg carries a list response tagged with its request sequence.
type callsLoadedMsg struct {
	seq     uint64
	resp    *model.ListResponse
	err     error
	elapsed time.Duration
}

// Init issues the first fetch.
func (m Model) Init() tea.Cmd {
	return m.refetch()
}

// refetch cancels the in-flight list request and starts a new one for the
// current filter and sort.
func (m *Model) refetch() tea.Cmd {
	params, err := query.Build(m.filter, m.sort, m.now())
	if err != nil {
		m.logger.WithError(err).Error("Failed to build list query")
		m.status = err.Error()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.inflight.replace(cancel)
	seq := m.store.Begin()
	m.loading = true
	m.logger.WithFields(logrus.Fields{
		"seq":    seq,
		"params": params.Encode(),
	}).Debug("Fetching calls")

	src := m.src
	fetch := func() tea.Msg {
		start := time.Now()
		resp, err := src.ListCalls(ctx, params)
		return callsLoadedMsg{seq: seq, resp: resp, err: err, elapsed: time.Since(start)}
	}
	return tea.Batch(fetch, m.spin.Tick)
}

func (m Model) applyCalls(msg callsLoadedMsg) Model {
	log := m.logger.WithField("seq", msg.seq)
	if msg.seq != m.store.Latest() {
		// superseded by a newer filter
		metrics.ObserveList(metrics.ResultStale, msg.elapsed)
		log.Debug("Discarding stale call list")
		return m
	}
	m.loading = false
	m.inflight.cancel = nil

	if msg.err != nil {
		metrics.ObserveList(metrics.ResultError, msg.elapsed)
		if errors.Is(msg.err, context.Canceled) {
			return m
		}
		log.WithError(msg.err).Warn("Failed to fetch calls")
		return m
	}

	if !m.store.Apply(msg.seq, msg.resp) {
		metrics.ObserveList(metrics.ResultStale, msg.elapsed)
		return m
	}
	metrics.ObserveList(metrics.ResultOK, msg.elapsed)
	log.WithField("count", len(msg.resp.Results)).Debug("Call list updated")
	m.status = ""
	m.rebuildRows()
	return m
}

// rebuildRows regroups the store into rows and drops the players of calls
// that are no longer listed.
func (m *Model) rebuildRows() {
	var selectedID int
	if c, ok := m.selected(); ok {
		selectedID = c.ID
	}

	m.rows = BuildRows(m.store.Groups(), m.rowOpts)
	m.callRows = m.callRows[:0]
	present := make(map[int]bool, len(m.rows))
	for i, r := range m.rows {
		if r.IsHeader() {
			continue
		}
		m.callRows = append(m.callRows, i)
		present[r.Call.ID] = true
		if r.Call.ID == selectedID {
			m.cursor = len(m.callRows) - 1
		}
	}

	for id, p := range m.players {
		if !present[id] {
			if err := p.Close(); err != nil {
				m.logger.WithError(err).WithField("call_id", id).Warn("Failed to release recording")
			}
			delete(m.players, id)
		}
	}

	if m.cursor >= len(m.callRows) {
		m.cursor = max(0, len(m.callRows)-1)
	}
	m.clampOffset()
}

func (m Model) selected() (model.Call, bool) {
	if len(m.callRows) == 0 || m.cursor >= len(m.callRows) {
		return model.Call{}, false
	}
	return m.rows[m.callRows[m.cursor]].Call, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case callsLoadedMsg:
		return m.applyCalls(msg), nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case recordLoadedMsg:
		return m.recordLoaded(msg)

	case playbackTickMsg:
		return m.playbackTick(msg)

	case playbackEndedMsg:
		return m.playbackEnded(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeFilter:
			return m.updateFilterForm(msg)
		case modeDetail:
			return m.updateDetail(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.shutdown()
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}

	case "down", "j":
		if m.cursor < len(m.callRows)-1 {
			m.cursor++
			m.clampOffset()
		}

	case "home", "g":
		m.cursor = 0
		m.clampOffset()

	case "end", "G":
		m.cursor = max(0, len(m.callRows)-1)
		m.clampOffset()

	case "pgup":
		m.cursor -= m.visibleRows()
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.clampOffset()

	case "pgdown":
		m.cursor += m.visibleRows()
		if m.cursor >= len(m.callRows) {
			m.cursor = max(0, len(m.callRows)-1)
		}
		m.clampOffset()

	case "tab":
		m.filter.CallType = m.filter.CallType.Next()
		return m, m.refetch()

	case "x":
		if m.filter.CallType == model.CallTypeAll {
			return m, nil
		}
		m.filter.CallType = model.CallTypeAll
		return m, m.refetch()

	case "d", "]":
		m.filter.Date = m.filter.Date.Next()
		return m, m.refetch()

	case "[":
		m.filter.Date = m.filter.Date.Prev()
		return m, m.refetch()

	case "f":
		return m.enterFilterForm(fieldCallType)

	case "c":
		return m.enterFilterForm(fieldRange)

	case "t":
		m.sort = m.sort.Toggle(query.SortByTime)
		return m, m.refetch()

	case "D":
		m.sort = m.sort.Toggle(query.SortByDuration)
		return m, m.refetch()

	case "r":
		return m, m.refetch()

	case " ":
		if c, ok := m.selected(); ok {
			return m.togglePlayback(c)
		}

	case "enter":
		return m.enterDetail()
	}

	return m, nil
}

// shutdown stops every playback and releases cached recordings.
func (m *Model) shutdown() {
	m.inflight.replace(nil)
	for id, p := range m.players {
		p.Close()
		delete(m.players, id)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modeFilter:
		return m.viewFilterForm()
	case modeDetail:
		return m.viewDetail()
	}

	var b strings.Builder

	// title bar
	title := titleStyle.Render("Звонки")
	info := dimStyle.Render(fmt.Sprintf("  %d звонков", m.store.TotalRows()))
	if m.loading {
		info += "  " + m.spin.View()
	}
	b.WriteString(title + info + "\n")

	b.WriteString(m.renderFilterBar() + "\n")
	b.WriteString(m.renderHeader() + "\n")

	visible := m.visibleRows()
	end := m.offset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	selectedRow := -1
	if len(m.callRows) > 0 {
		selectedRow = m.callRows[m.cursor]
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == selectedRow) + "\n")
	}

	rendered := end - m.offset
	if len(m.rows) == 0 && !m.loading {
		b.WriteString(dimStyle.Render("  Нет звонков за выбранный период") + "\n")
		rendered++
	}
	for i := rendered; i < visible; i++ {
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render("  "+m.status) + "  ")
	}
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderFilterBar() string {
	typeLabel := m.filter.CallType.Label()
	var left string
	if m.filter.CallType != model.CallTypeAll {
		left = accentStyle.Render(typeLabel+" ▾") + "  " + dimStyle.Render("x: Сбросить фильтры ✕")
	} else {
		left = dimStyle.Render(typeLabel + " ▾")
	}

	dateLabel := m.filter.Date.Label()
	if m.filter.Date == query.Custom {
		dateLabel = m.rangeText
	}
	right := dimStyle.Render("◀ ") + accentStyle.Render("📅 "+dateLabel) + dimStyle.Render(" ▶")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 2 {
		gap = 2
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

func sortIcon(d query.Direction) string {
	switch d {
	case query.Asc:
		return " ▲"
	case query.Desc:
		return " ▼"
	default:
		return ""
	}
}

func (m Model) renderHeader() string {
	w := m.colWidths()
	cols := []string{
		pad("Тип", w.kind),
		pad("Время"+sortIcon(m.sort.Time()), w.time),
		pad("Сотр.", w.avatar),
		pad("Звонок", w.phone),
		pad("Источник", w.source),
		pad("Оценка", w.rating),
		"Длительность" + sortIcon(m.sort.Duration()),
	}
	return headerStyle.Render(strings.Join(cols, " "))
}

func (m Model) renderRow(r Row, selected bool) string {
	if r.IsHeader() {
		return groupStyle.Render(GroupDate(r.Date)) + countStyle.Render(fmt.Sprintf("%d", r.Count))
	}

	w := m.colWidths()
	c := r.Call

	avatar := "●"
	if AvatarFor(c, m.rowOpts.DefaultAvatar) == m.rowOpts.DefaultAvatar {
		avatar = "○"
	}

	cols := []string{
		pad(DirectionIcon(c), w.kind),
		pad(CallTime(c), w.time),
		pad(avatar, w.avatar),
		pad(PhoneFor(c), w.phone),
		pad(SourceFor(c), w.source),
		pad(c.Rating.Label(), w.rating),
		m.durationCell(c),
	}

	if selected {
		row := selectedStyle.Render(strings.Join(cols, " "))
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, row)
	}

	badge := ratingStyle(c.Rating).Render(c.Rating.Label())
	cols[0] = directionStyle(c).Render(cols[0])
	cols[5] = badge + strings.Repeat(" ", max(0, w.rating-lipgloss.Width(badge)))
	return normalStyle.Render(strings.Join(cols, " "))
}

func directionStyle(c model.Call) lipgloss.Style {
	if c.Inbound() {
		return inboundTag
	}
	return outboundTag
}

func ratingStyle(r model.Rating) lipgloss.Style {
	switch r {
	case model.RatingBad:
		return ratingBadStyle
	case model.RatingExcellent:
		return ratingExcellentStyle
	default:
		return ratingGoodStyle
	}
}

// durationCell is the playback control for calls with a recording and the
// plain duration otherwise.
func (m Model) durationCell(c model.Call) string {
	if !c.HasRecord() {
		return Seconds(c.Duration)
	}
	p := m.players[c.ID]
	icon := "▶"
	pct := 0
	if p != nil {
		switch p.State() {
		case player.Loading:
			icon = "…"
		case player.Playing:
			icon = "⏸"
			pct = p.Progress()
		}
	}
	return Clock(c.Duration) + " " + icon + " " + progressBar(pct, 10)
}

func progressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	done := pct * width / 100
	return progressDoneStyle.Render(strings.Repeat("━", done)) +
		progressRestStyle.Render(strings.Repeat("━", width-done))
}

func (m Model) renderHelp() string {
	return helpStyle.Render("  Tab: тип  [ ]: период  c: даты  t/D: сортировка  Space: запись  Enter: детали  q: выход")
}

type colWidths struct {
	kind   int
	time   int
	avatar int
	phone  int
	source int
	rating int
}

func (m Model) colWidths() colWidths {
	w := colWidths{
		kind:   4,
		time:   8,
		avatar: 6,
		phone:  16,
		rating: 12,
	}
	// source gets remaining width; the duration column needs about 24
	used := w.kind + w.time + w.avatar + w.phone + w.rating + 24 + 8
	w.source = m.width - used
	if w.source < 10 {
		w.source = 10
	}
	if w.source > 30 {
		w.source = 30
	}
	return w
}

func (m Model) visibleRows() int {
	// title, filter bar, header, bottom bar
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) clampOffset() {
	if len(m.callRows) == 0 {
		m.offset = 0
		return
	}
	visible := m.visibleRows()
	row := m.callRows[m.cursor]
	// keep the day header above the first call of a group in view
	top := row
	if top > 0 && m.rows[top-1].IsHeader() {
		top--
	}
	if top < m.offset {
		m.offset = top
	}
	if row >= m.offset+visible {
		m.offset = row - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
