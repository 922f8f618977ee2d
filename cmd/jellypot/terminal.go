package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && isTerminal(file)
}

func colorize(value, color string, enabled bool) string {
	if !enabled || color == "" {
		return value
	}
	return color + value + ansiReset
}

func canPause(in io.Reader) bool {
	file, ok := in.(*os.File)
	return ok && isTerminal(file)
}

// waitForKey blocks until a key is pressed on in. It does nothing unless in
// is a terminal, so handlers started without a console exit immediately.
func waitForKey(in io.Reader, out io.Writer) {
	if !canPause(in) {
		return
	}
	file := in.(*os.File)
	fmt.Fprint(out, "Press any key to exit...")
	defer fmt.Fprintln(out)

	var key [1]byte
	fd := int(file.Fd())
	if state, err := term.MakeRaw(fd); err == nil {
		defer term.Restore(fd, state) //nolint:errcheck
	}
	_, _ = file.Read(key[:])
}

// readSecret reads one line from in, without echo when in is a terminal.
func readSecret(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if file, ok := in.(*os.File); ok && isTerminal(file) {
		value, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(value), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
