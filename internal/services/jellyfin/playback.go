package jellyfin

import (
	"context"
	"net/http"
)

// Playback event names understood by the session API.
const (
	EventTimeUpdate = "timeupdate"
	EventPause      = "pause"
	EventUnpause    = "unpause"
)

// PlayMethodDirect marks playback of the original file.
const PlayMethodDirect = "DirectPlay"

// PlaybackEvent is the body of the session playback endpoints.
type PlaybackEvent struct {
	ItemID                 string `json:"ItemId"`
	MediaSourceID          string `json:"MediaSourceId"`
	PositionTicks          int64  `json:"PositionTicks"`
	PlaybackStartTimeTicks int64  `json:"PlaybackStartTimeTicks"`
	PlayMethod             string `json:"PlayMethod"`
	CanSeek                bool   `json:"CanSeek"`
	IsPaused               bool   `json:"IsPaused"`
	EventName              string `json:"EventName,omitempty"`
}

// ReportPlaying announces that playback started.
func (c *Client) ReportPlaying(ctx context.Context, event PlaybackEvent) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing", nil, event, nil)
}

// ReportProgress sends a position update.
func (c *Client) ReportProgress(ctx context.Context, event PlaybackEvent) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing/Progress", nil, event, nil)
}

// ReportStopped announces that playback ended at event.PositionTicks.
func (c *Client) ReportStopped(ctx context.Context, event PlaybackEvent) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing/Stopped", nil, event, nil)
}
