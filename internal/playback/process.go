package playback

import (
	"fmt"
	"os/exec"
)

// Process is a started player.
type Process interface {
	Wait() error
	Kill() error
	PID() int
}

// Starter starts the player argv.
type Starter func(argv []string) (Process, error)

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// ExecStarter starts argv as a child process.
func ExecStarter(argv []string) (Process, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("player path is empty")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	return &execProcess{cmd: cmd}, nil
}
