package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jackwu/callview/metrics"
	"github.com/jackwu/callview/model"
	"github.com/jackwu/callview/player"
)

// recordLoadedMsg is sent when a recording download completes.
type recordLoadedMsg struct {
	id    int
	audio []byte
	err   error
}

// playbackTickMsg asks the player of call id to refresh its progress.
type playbackTickMsg struct {
	id  int
	gen int
}

// playbackEndedMsg is sent when the player process of call id exits.
type playbackEndedMsg struct {
	id  int
	gen int
	err error
}

func fetchRecord(src Source, c model.Call) tea.Cmd {
	id := c.ID
	record := c.Record
	partnership := c.PartnershipID.String()
	return func() tea.Msg {
		audio, err := src.FetchRecord(context.Background(), record, partnership)
		if err != nil {
			metrics.ObserveRecord(metrics.ResultError)
		} else {
			metrics.ObserveRecord(metrics.ResultOK)
		}
		return recordLoadedMsg{id: id, audio: audio, err: err}
	}
}

func pollPlayback(id, gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return playbackTickMsg{id: id, gen: gen}
	})
}

// watchPlayback follows the running player of p until it exits.
func watchPlayback(id int, p *player.Controller) tea.Cmd {
	gen, wait := p.Wait()
	if wait == nil {
		return nil
	}
	return tea.Batch(
		func() tea.Msg {
			return playbackEndedMsg{id: id, gen: gen, err: wait()}
		},
		pollPlayback(id, gen),
	)
}

// togglePlayback plays or pauses the recording of c. Only calls with a
// recording have a player.
func (m Model) togglePlayback(c model.Call) (tea.Model, tea.Cmd) {
	if !c.HasRecord() {
		return m, nil
	}
	p, ok := m.players[c.ID]
	if !ok {
		p = player.NewController(c, m.runner)
		m.players[c.ID] = p
	}

	log := m.logger.WithFields(logrus.Fields{
		"call_id": c.ID,
		"record":  c.Record,
	})

	step, err := p.Activate(m.now())
	if err != nil {
		log.WithError(err).Warn("Failed to start playback")
		m.status = playbackError(err)
		return m, nil
	}

	switch step {
	case player.StepFetch:
		log.Debug("Fetching recording")
		return m, fetchRecord(m.src, c)
	case player.StepStarted:
		log.Debug("Playback resumed from cache")
		return m, watchPlayback(c.ID, p)
	case player.StepStopped:
		log.Debug("Playback stopped")
	}
	return m, nil
}

func (m Model) recordLoaded(msg recordLoadedMsg) (tea.Model, tea.Cmd) {
	p, ok := m.players[msg.id]
	if !ok {
		// the row went away while downloading
		return m, nil
	}
	log := m.logger.WithField("call_id", msg.id)

	if msg.err != nil {
		log.WithError(msg.err).Warn("Failed to fetch recording")
		p.LoadFailed()
		return m, nil
	}

	if err := p.Loaded(msg.audio, m.now()); err != nil {
		log.WithError(err).Warn("Failed to start playback")
		m.status = playbackError(err)
		return m, nil
	}
	log.WithField("bytes", len(msg.audio)).Debug("Playback started")
	return m, watchPlayback(msg.id, p)
}

func (m Model) playbackTick(msg playbackTickMsg) (tea.Model, tea.Cmd) {
	p, ok := m.players[msg.id]
	if !ok || !p.Poll(msg.gen, m.now()) {
		return m, nil
	}
	return m, pollPlayback(msg.id, msg.gen)
}

func (m Model) playbackEnded(msg playbackEndedMsg) (tea.Model, tea.Cmd) {
	p, ok := m.players[msg.id]
	if !ok {
		return m, nil
	}
	if p.Finished(msg.gen) && msg.err != nil {
		m.logger.WithError(msg.err).WithField("call_id", msg.id).Warn("Player exited with error")
	}
	return m, nil
}

func playbackError(err error) string {
	if errors.Is(err, player.ErrNoPlayer) {
		return "Не найден проигрыватель (CALLVIEW_PLAYER)"
	}
	return "Не удалось воспроизвести запись"
}
