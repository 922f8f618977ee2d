//go:build !windows

package playback

import (
	"context"
	"net"
	"path/filepath"
)

// IPCPath returns the mpv IPC endpoint inside stateDir.
func IPCPath(stateDir string) string {
	return filepath.Join(stateDir, "mpv.sock")
}

func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
