package player

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoPlayer means no audio player could be found.
var ErrNoPlayer = errors.New("no audio player found; set CALLVIEW_PLAYER")

// candidates are tried in order on platforms without a built-in player.
var candidates = [][]string{
	{"mpv", "--no-video", "--really-quiet"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpg123", "-q"},
}

// BuildCommand returns the player argv. A configured command line wins;
// otherwise the platform player is used, or the first candidate on PATH.
func BuildCommand(configured string, lookPath func(string) (string, error)) ([]string, error) {
	if argv := strings.Fields(configured); len(argv) > 0 {
		return argv, nil
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	switch runtime.GOOS {
	case "darwin":
		if _, err := lookPath("afplay"); err == nil {
			return []string{"afplay"}, nil
		}
	}
	for _, argv := range candidates {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrNoPlayer
}

// Process is a running playback.
type Process interface {
	Wait() error
	Stop() error
}

// Runner starts playback of an audio file.
type Runner interface {
	Start(path string) (Process, error)
}

// ExecRunner plays files with an external program. The file path is
// appended to Argv; no shell is involved.
type ExecRunner struct {
	Argv []string
}

func (r ExecRunner) Start(path string) (Process, error) {
	if len(r.Argv) == 0 {
		return nil, ErrNoPlayer
	}
	args := append(append([]string{}, r.Argv[1:]...), path)
	cmd := exec.Command(r.Argv[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Stop() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
