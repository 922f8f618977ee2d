//go:build !windows

package protocol

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// runCommand executes a registration helper. Tests replace it.
var runCommand = func(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func register(reg Registration) error {
	if runtime.GOOS == "darwin" {
		return ErrUnsupported
	}
	if _, err := writeDesktopEntry(reg); err != nil {
		return err
	}
	return runCommand("xdg-mime", "default", desktopFileName(reg.Scheme), mimeType(reg.Scheme))
}

func unregister(scheme string) error {
	if runtime.GOOS == "darwin" {
		return ErrUnsupported
	}
	return removeDesktopEntry(scheme)
}
