//go:build windows

package protocol

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// classesRoot is the per-user view of HKEY_CLASSES_ROOT, writable without
// elevation.
const classesRoot = `Software\Classes\`

func register(reg Registration) error {
	base := classesRoot + reg.Scheme
	key, _, err := registry.CreateKey(registry.CURRENT_USER, base, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("create protocol key: %w", err)
	}
	defer key.Close()
	if err := key.SetStringValue("", "URL:"+reg.Description); err != nil {
		return fmt.Errorf("set protocol description: %w", err)
	}
	if err := key.SetStringValue("URL Protocol", ""); err != nil {
		return fmt.Errorf("set URL Protocol marker: %w", err)
	}

	cmdKey, _, err := registry.CreateKey(registry.CURRENT_USER, base+`\shell\open\command`, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("create command key: %w", err)
	}
	defer cmdKey.Close()
	if err := cmdKey.SetStringValue("", reg.Command()); err != nil {
		return fmt.Errorf("set launch command: %w", err)
	}
	return nil
}

func unregister(scheme string) error {
	base := classesRoot + scheme
	// DeleteKey refuses keys with subkeys, so remove leaf first.
	for _, path := range []string{base + `\shell\open\command`, base + `\shell\open`, base + `\shell`, base} {
		if err := registry.DeleteKey(registry.CURRENT_USER, path); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return nil
}
