package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// desktopEntry renders the freedesktop handler entry.
func desktopEntry(reg Registration) string {
	var sb strings.Builder
	sb.WriteString("[Desktop Entry]\n")
	sb.WriteString("Type=Application\n")
	fmt.Fprintf(&sb, "Name=%s\n", reg.Description)
	fmt.Fprintf(&sb, "Exec=\"%s\" %%u\n", reg.Executable)
	sb.WriteString("NoDisplay=true\n")
	sb.WriteString("Terminal=false\n")
	fmt.Fprintf(&sb, "MimeType=%s;\n", mimeType(reg.Scheme))
	return sb.String()
}

func mimeType(scheme string) string {
	return "x-scheme-handler/" + scheme
}

func desktopFileName(scheme string) string {
	return scheme + ".desktop"
}

// applicationsDir follows the XDG base directory rules.
func applicationsDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "applications"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "applications"), nil
}

func writeDesktopEntry(reg Registration) (string, error) {
	dir, err := applicationsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create applications directory: %w", err)
	}
	path := filepath.Join(dir, desktopFileName(reg.Scheme))
	if err := os.WriteFile(path, []byte(desktopEntry(reg)), 0o644); err != nil {
		return "", fmt.Errorf("write desktop entry: %w", err)
	}
	return path, nil
}

func removeDesktopEntry(scheme string) error {
	dir, err := applicationsDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, desktopFileName(scheme))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}
