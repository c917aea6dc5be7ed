package tui

import (
	"context"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/callview/api"
	"github.com/jackwu/callview/model"
	"github.com/jackwu/callview/player"
	"github.com/jackwu/callview/query"
)

type fakeSource struct {
	calls   []query.Params
	results [][]model.Call // served in order; the last one repeats
	listErr error
	audio   []byte
	records []string
}

func (s *fakeSource) ListCalls(_ context.Context, params query.Params) (*model.ListResponse, error) {
	s.calls = append(s.calls, params)
	if s.listErr != nil {
		return nil, s.listErr
	}
	var results []model.Call
	if n := len(s.results); n > 0 {
		results = s.results[min(len(s.calls), n)-1]
	}
	return &model.ListResponse{Results: results, TotalRows: model.FlexInt(len(results))}, nil
}

func (s *fakeSource) FetchRecord(_ context.Context, record, _ string) ([]byte, error) {
	s.records = append(s.records, record)
	return s.audio, nil
}

func (s *fakeSource) last(t *testing.T) query.Params {
	t.Helper()
	require.NotEmpty(t, s.calls)
	return s.calls[len(s.calls)-1]
}

type fakeProcess struct {
	done    chan struct{}
	stopped bool
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) Stop() error {
	if !p.stopped {
		p.stopped = true
		close(p.done)
	}
	return nil
}

type fakeRunner struct {
	paths []string
	procs []*fakeProcess
}

func (r *fakeRunner) Start(path string) (player.Process, error) {
	p := &fakeProcess{done: make(chan struct{})}
	r.paths = append(r.paths, path)
	r.procs = append(r.procs, p)
	return p, nil
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func testNow() time.Time {
	return time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
}

func newTestModel(t *testing.T, src *fakeSource, runner player.Runner, now func() time.Time) Model {
	t.Helper()
	if now == nil {
		now = testNow
	}
	m := NewModel(Options{
		Source: src,
		Runner: runner,
		Rows:   RowOptions{SuppressFirstHeader: true, DefaultAvatar: "avatar.svg"},
		Now:    now,
	})
	t.Cleanup(func() { m.shutdown() })
	return m
}

// listMsg runs cmd and returns the call list result it produced.
func listMsg(t *testing.T, cmd tea.Cmd) callsLoadedMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if loaded, ok := msg.(callsLoadedMsg); ok {
			return loaded
		}
	}
	t.Fatal("command did not fetch calls")
	return callsLoadedMsg{}
}

// collect runs a command and any batched commands it expands to. It must
// only be used on commands that return without blocking.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded returns a model with the first list response applied.
func loaded(t *testing.T, src *fakeSource, runner player.Runner, now func() time.Time) Model {
	t.Helper()
	m := newTestModel(t, src, runner, now)
	m, _ = update(t, m, listMsg(t, m.Init()))
	return m
}

func TestModelInitialLoad(t *testing.T) {
	src := &fakeSource{results: [][]model.Call{sampleCalls()}}
	m := loaded(t, src, nil, nil)

	params := src.last(t)
	start, _ := params.Get("date_start")
	end, _ := params.Get("date_end")
	assert.Equal(t, "2024-01-08", start)
	assert.Equal(t, "2024-01-10", end)
	_, hasType := params.Get("in_out")
	assert.False(t, hasType)

	assert.False(t, m.loading)
	require.Len(t, m.rows, 4)
	assert.Len(t, m.callRows, 3)

	c, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, 1, c.ID)

	view := m.View()
	assert.Contains(t, view, "Звонки")
	assert.Contains(t, view, "+79001112233")
	assert.Contains(t, view, "04/01/2024")
}

func TestModelDiscardsStaleResponse(t *testing.T) {
	calls := sampleCalls()
	src := &fakeSource{results: [][]model.Call{calls, calls[2:]}}
	m := newTestModel(t, src, nil, nil)

	first := listMsg(t, m.Init())
	m, cmd := update(t, m, keyRunes("x"))
	assert.Nil(t, cmd, "resetting an unset call type does not refetch")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	second := listMsg(t, cmd)

	m, _ = update(t, m, second)
	m, _ = update(t, m, first)

	require.Len(t, m.callRows, 1)
	assert.Equal(t, 3, m.rows[m.callRows[0]].Call.ID)
	assert.Equal(t, 1, m.store.TotalRows())
}

func TestModelKeepsRowsWhenFetchFails(t *testing.T) {
	src := &fakeSource{results: [][]model.Call{sampleCalls()}}
	m := loaded(t, src, nil, nil)
	require.Len(t, m.rows, 4)

	src.listErr = &api.StatusError{Code: 500, Status: "500 Internal Server Error"}
	m, cmd := update(t, m, keyRunes("r"))
	m, _ = update(t, m, listMsg(t, cmd))

	assert.False(t, m.loading)
	assert.Empty(t, m.status)
	assert.Len(t, m.rows, 4)
	assert.Equal(t, 3, m.store.TotalRows())
	assert.NotContains(t, m.View(), "Не удалось")
}

func TestModelCallTypeKeys(t *testing.T) {
	src := &fakeSource{}
	m := loaded(t, src, nil, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	listMsg(t, cmd)
	v, _ := src.last(t).Get("in_out")
	assert.Equal(t, "1", v)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	listMsg(t, cmd)
	v, _ = src.last(t).Get("in_out")
	assert.Equal(t, "0", v)

	m, cmd = update(t, m, keyRunes("x"))
	listMsg(t, cmd)
	_, ok := src.last(t).Get("in_out")
	assert.False(t, ok)
	assert.Equal(t, model.CallTypeAll, m.filter.CallType)
}

func TestModelSortKeys(t *testing.T) {
	src := &fakeSource{}
	m := loaded(t, src, nil, nil)

	sortParams := func() (string, string) {
		by, _ := src.last(t).Get("sort_by")
		order, _ := src.last(t).Get("order")
		return by, order
	}

	m, cmd := update(t, m, keyRunes("t"))
	listMsg(t, cmd)
	by, order := sortParams()
	assert.Equal(t, "date", by)
	assert.Equal(t, "DESC", order)

	m, cmd = update(t, m, keyRunes("t"))
	listMsg(t, cmd)
	_, order = sortParams()
	assert.Equal(t, "ASC", order)

	m, cmd = update(t, m, keyRunes("D"))
	listMsg(t, cmd)
	by, order = sortParams()
	assert.Equal(t, "duration", by)
	assert.Equal(t, "DESC", order)
	assert.Equal(t, query.Unset, m.sort.Time())
}

func TestModelDateFilterKeys(t *testing.T) {
	src := &fakeSource{}
	m := loaded(t, src, nil, nil)

	m, cmd := update(t, m, keyRunes("]"))
	listMsg(t, cmd)
	assert.Equal(t, query.Week, m.filter.Date)
	start, _ := src.last(t).Get("date_start")
	assert.Equal(t, "2024-01-04", start)

	m, cmd = update(t, m, keyRunes("["))
	listMsg(t, cmd)
	assert.Equal(t, query.LastThree, m.filter.Date)
}

func TestFilterFormRejectsInvalidRange(t *testing.T) {
	src := &fakeSource{}
	m := loaded(t, src, nil, nil)
	requests := len(src.calls)

	m, _ = update(t, m, keyRunes("c"))
	require.Equal(t, modeFilter, m.mode)

	m, _ = update(t, m, keyRunes("050124010124"))
	assert.Equal(t, "05.01.24-01.01.24", m.form.rangeInput.Value())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, modeFilter, m.mode)
	assert.True(t, m.form.invalid)
	assert.Equal(t, query.LastThree, m.filter.Date)
	assert.Len(t, src.calls, requests)
	assert.Contains(t, m.View(), "Неверный диапазон дат")

	// editing clears the error; esc leaves the filter as it was
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.False(t, m.form.invalid)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, query.LastThree, m.filter.Date)
}

func TestFilterFormCommitsCustomRange(t *testing.T) {
	src := &fakeSource{}
	m := loaded(t, src, nil, nil)

	m, _ = update(t, m, keyRunes("c"))
	m, _ = update(t, m, keyRunes("010124050124"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	listMsg(t, cmd)

	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, query.Custom, m.filter.Date)
	assert.Equal(t, "01.01.24-05.01.24", m.rangeText)

	start, _ := src.last(t).Get("date_start")
	end, _ := src.last(t).Get("date_end")
	assert.Equal(t, "2024-01-01", start)
	assert.Equal(t, "2024-01-05", end)
	assert.Contains(t, m.View(), "01.01.24-05.01.24")
}

func TestFilterFormRelativePeriod(t *testing.T) {
	src := &fakeSource{}
	m := loaded(t, src, nil, nil)

	m, _ = update(t, m, keyRunes("f"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight}) // call type: inbound
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight}) // period: week
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	listMsg(t, cmd)

	assert.Equal(t, model.CallTypeInbound, m.filter.CallType)
	assert.Equal(t, query.Week, m.filter.Date)
	v, _ := src.last(t).Get("in_out")
	assert.Equal(t, "1", v)
}

func TestModelPlayback(t *testing.T) {
	clk := &clock{t: testNow()}
	src := &fakeSource{results: [][]model.Call{sampleCalls()}, audio: []byte("mp3")}
	runner := &fakeRunner{}
	m := loaded(t, src, runner, clk.Now)

	// call 1 is selected and has a recording
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	assert.Equal(t, player.Loading, m.players[1].State())

	msg, ok := cmd().(recordLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"r1"}, src.records)

	m, cmd = update(t, m, msg)
	require.NotNil(t, cmd)
	p := m.players[1]
	assert.Equal(t, player.Playing, p.State())
	require.Len(t, runner.paths, 1)
	data, err := os.ReadFile(runner.paths[0])
	require.NoError(t, err)
	assert.Equal(t, "mp3", string(data))

	clk.t = clk.t.Add(16 * time.Second) // 16 of 64 seconds
	m, cmd = update(t, m, playbackTickMsg{id: 1, gen: p.Generation()})
	assert.NotNil(t, cmd)
	assert.Equal(t, 25, p.Progress())
	assert.Contains(t, m.View(), "⏸")

	// pause
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, cmd)
	assert.Equal(t, player.Idle, p.State())
	assert.True(t, runner.procs[0].stopped)

	// a tick of the stopped playback does not reschedule
	_, cmd = update(t, m, playbackTickMsg{id: 1, gen: p.Generation()})
	assert.Nil(t, cmd)
}

func TestModelPlaybackIgnoresCallsWithoutRecord(t *testing.T) {
	src := &fakeSource{results: [][]model.Call{sampleCalls()}}
	m := loaded(t, src, &fakeRunner{}, nil)

	m, _ = update(t, m, keyRunes("j"))
	c, _ := m.selected()
	require.Equal(t, 2, c.ID)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, cmd)
	assert.Empty(t, m.players)
}

func TestModelPlaybackWithoutPlayer(t *testing.T) {
	src := &fakeSource{results: [][]model.Call{sampleCalls()}, audio: []byte("mp3")}
	m := loaded(t, src, nil, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = update(t, m, cmd())
	assert.Equal(t, player.Idle, m.players[1].State())
	assert.Contains(t, m.status, "проигрыватель")
}

func TestModelDropsPlayersOfVanishedCalls(t *testing.T) {
	calls := sampleCalls()
	src := &fakeSource{results: [][]model.Call{calls, calls[1:]}, audio: []byte("mp3")}
	runner := &fakeRunner{}
	m := loaded(t, src, runner, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = update(t, m, cmd())
	require.Equal(t, player.Playing, m.players[1].State())

	m, cmd = update(t, m, keyRunes("r"))
	m, _ = update(t, m, listMsg(t, cmd))

	assert.NotContains(t, m.players, 1)
	assert.True(t, runner.procs[0].stopped)
	_, err := os.Stat(runner.paths[0])
	assert.True(t, os.IsNotExist(err))
}

func TestModelNavigation(t *testing.T) {
	src := &fakeSource{results: [][]model.Call{sampleCalls()}}
	m := loaded(t, src, nil, nil)

	m, _ = update(t, m, keyRunes("G"))
	c, _ := m.selected()
	assert.Equal(t, 3, c.ID)

	m, _ = update(t, m, keyRunes("j"))
	c, _ = m.selected()
	assert.Equal(t, 3, c.ID)

	m, _ = update(t, m, keyRunes("g"))
	c, _ = m.selected()
	assert.Equal(t, 1, c.ID)
}

func TestModelDetailView(t *testing.T) {
	src := &fakeSource{results: [][]model.Call{sampleCalls()}}
	m := loaded(t, src, nil, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeDetail, m.mode)
	view := m.View()
	assert.Contains(t, view, "Входящий звонок")
	assert.Contains(t, view, "+79001112233")
	assert.Contains(t, view, "r1")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
}

func TestModelQuit(t *testing.T) {
	m := loaded(t, &fakeSource{}, nil, nil)
	m, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
