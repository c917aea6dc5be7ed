package player

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackwu/callview/metrics"
	"github.com/jackwu/callview/model"
)

type State int

const (
	Idle State = iota
	Loading
	Playing
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	default:
		return "idle"
	}
}

// Step tells the caller what Activate did.
type Step int

const (
	StepNone    Step = iota // a download is already in flight
	StepFetch               // caller must download the audio and call Loaded
	StepStarted             // playback started from the cached audio
	StepStopped             // playback was stopped
)

// Controller is the playback state of one call row. The audio is fetched
// on first play and kept in a temp file until Close.
//
// Progress is estimated from wall-clock time since playback started
// against the duration reported by the server, not the audio's own length.
type Controller struct {
	Record        string
	PartnershipID string
	Total         time.Duration

	runner    Runner
	state     State
	audioPath string
	proc      Process
	started   time.Time
	progress  int
	gen       int
}

func NewController(c model.Call, runner Runner) *Controller {
	return &Controller{
		Record:        c.Record,
		PartnershipID: c.PartnershipID.String(),
		Total:         time.Duration(c.Duration) * time.Second,
		runner:        runner,
	}
}

func (c *Controller) State() State    { return c.state }
func (c *Controller) Progress() int   { return c.progress }
func (c *Controller) Generation() int { return c.gen }
func (c *Controller) Cached() bool    { return c.audioPath != "" }

// Activate handles a play/pause press.
func (c *Controller) Activate(now time.Time) (Step, error) {
	switch c.state {
	case Loading:
		return StepNone, nil
	case Playing:
		c.stop()
		return StepStopped, nil
	}

	if c.audioPath == "" {
		c.state = Loading
		return StepFetch, nil
	}
	if err := c.start(now); err != nil {
		return StepNone, err
	}
	return StepStarted, nil
}

// Loaded caches the downloaded audio and starts playing it.
func (c *Controller) Loaded(audio []byte, now time.Time) error {
	if c.state != Loading {
		return nil
	}
	f, err := os.CreateTemp("", "callview-*.mp3")
	if err != nil {
		c.state = Idle
		return fmt.Errorf("player: failed to cache recording: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		c.state = Idle
		return fmt.Errorf("player: failed to cache recording: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		c.state = Idle
		return fmt.Errorf("player: failed to cache recording: %w", err)
	}
	c.audioPath = f.Name()
	return c.start(now)
}

// LoadFailed returns a loading controller to idle.
func (c *Controller) LoadFailed() {
	if c.state == Loading {
		c.state = Idle
	}
}

// Wait returns a blocking function that returns when the current playback
// ends, together with its generation. It is nil when nothing is playing.
func (c *Controller) Wait() (int, func() error) {
	if c.state != Playing || c.proc == nil {
		return c.gen, nil
	}
	return c.gen, c.proc.Wait
}

// Finished handles the end of playback gen. Ends of playbacks that were
// stopped or replaced are ignored.
func (c *Controller) Finished(gen int) bool {
	if gen != c.gen || c.state != Playing {
		return false
	}
	c.state = Idle
	c.progress = 0
	c.proc = nil
	metrics.PlaybackStopped()
	return true
}

// Poll updates progress for playback gen and reports whether it should be
// polled again.
func (c *Controller) Poll(gen int, now time.Time) bool {
	if gen != c.gen || c.state != Playing {
		return false
	}
	c.progress = progress(now.Sub(c.started), c.Total)
	return true
}

// Close stops playback and removes the cached audio.
func (c *Controller) Close() error {
	if c.state == Playing {
		c.stop()
	}
	c.state = Idle
	if c.audioPath == "" {
		return nil
	}
	err := os.Remove(c.audioPath)
	c.audioPath = ""
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Controller) start(now time.Time) error {
	if c.runner == nil {
		c.state = Idle
		return ErrNoPlayer
	}
	proc, err := c.runner.Start(c.audioPath)
	if err != nil {
		c.state = Idle
		return fmt.Errorf("player: failed to start playback: %w", err)
	}
	c.gen++
	c.proc = proc
	c.started = now
	c.progress = 0
	c.state = Playing
	metrics.PlaybackStarted()
	return nil
}

func (c *Controller) stop() {
	if c.proc != nil {
		c.proc.Stop()
	}
	c.proc = nil
	c.state = Idle
	c.progress = 0
	metrics.PlaybackStopped()
}

// progress is elapsed as a floored percentage of total, capped at 100.
func progress(elapsed, total time.Duration) int {
	if total <= 0 || elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 100
	}
	return int(elapsed * 100 / total)
}
