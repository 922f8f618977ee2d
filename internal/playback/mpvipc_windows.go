//go:build windows

package playback

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

// IPCPath returns the mpv IPC named pipe. mpv on Windows only serves pipes.
func IPCPath(string) string {
	return `\\.\pipe\jellypot-mpv`
}

func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}
