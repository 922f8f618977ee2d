package playback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/tidwall/gjson"
)

// Position is a sample of the player state.
type Position struct {
	Time   time.Duration
	Paused bool
}

// PositionProbe reads the player's current position.
type PositionProbe interface {
	Probe(ctx context.Context) (Position, error)
}

// ErrPositionUnavailable is returned while the player has no position, for
// example before the stream has opened.
var ErrPositionUnavailable = errors.New("position unavailable")

// MPVProbe queries mpv's JSON IPC server.
type MPVProbe struct {
	path    string
	dial    func(ctx context.Context, path string) (net.Conn, error)
	timeout time.Duration
}

// NewMPVProbe returns a probe for the IPC endpoint at path.
func NewMPVProbe(path string) *MPVProbe {
	return &MPVProbe{path: path, dial: dialIPC, timeout: time.Second}
}

const mpvQuery = `{"command":["get_property","time-pos"],"request_id":1}` + "\n" +
	`{"command":["get_property","pause"],"request_id":2}` + "\n"

// Probe asks mpv for time-pos and pause. Each probe uses a fresh connection;
// mpv interleaves unsolicited event lines, which are skipped. mpv keeps the
// connection open, so reading stops as soon as both replies are in. The
// exchange is bounded by the probe timeout and by ctx.
func (p *MPVProbe) Probe(ctx context.Context) (Position, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := p.dial(probeCtx, p.path)
	if err != nil {
		return Position{}, fmt.Errorf("connect to mpv ipc: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(p.timeout))
	stop := context.AfterFunc(probeCtx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write([]byte(mpvQuery)); err != nil {
		return Position{}, fmt.Errorf("write mpv query: %w", err)
	}

	var (
		pos              Position
		gotTime, gotMode bool
	)
	scanner := bufio.NewScanner(conn)
	for !(gotTime && gotMode) && scanner.Scan() {
		line := scanner.Text()
		reply := gjson.Parse(line)
		id := reply.Get("request_id")
		if !id.Exists() {
			continue
		}
		ok := reply.Get("error").String() == "success"
		switch id.Int() {
		case 1:
			if !ok {
				return Position{}, ErrPositionUnavailable
			}
			seconds := reply.Get("data").Float()
			pos.Time = time.Duration(seconds * float64(time.Second))
			gotTime = true
		case 2:
			pos.Paused = ok && reply.Get("data").Bool()
			gotMode = true
		}
	}
	if !(gotTime && gotMode) {
		if err := ctx.Err(); err != nil {
			return Position{}, err
		}
		if err := scanner.Err(); err != nil {
			return Position{}, fmt.Errorf("read mpv reply: %w", err)
		}
		return Position{}, fmt.Errorf("read mpv reply: connection closed")
	}
	return pos, nil
}
