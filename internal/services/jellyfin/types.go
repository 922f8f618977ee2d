package jellyfin

import "time"

// TicksPerSecond is the resolution of Jellyfin position values (100ns).
const TicksPerSecond = 10_000_000

// TicksToDuration converts Jellyfin ticks to a duration.
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks) * 100 * time.Nanosecond
}

// DurationToTicks converts a duration to Jellyfin ticks.
func DurationToTicks(d time.Duration) int64 {
	return int64(d / (100 * time.Nanosecond))
}

// UserData is the per-user state of an item.
type UserData struct {
	PlaybackPositionTicks int64 `json:"PlaybackPositionTicks"`
	Played                bool  `json:"Played"`
}

// MediaSource is one playable source of an item.
type MediaSource struct {
	ID string `json:"Id"`
}

// MediaItem is the subset of BaseItemDto the handler and resolver use.
type MediaItem struct {
	ID           string        `json:"Id"`
	Name         string        `json:"Name"`
	Type         string        `json:"Type"`
	SeriesName   string        `json:"SeriesName,omitempty"`
	RunTimeTicks int64         `json:"RunTimeTicks"`
	UserData     UserData      `json:"UserData"`
	MediaSources []MediaSource `json:"MediaSources,omitempty"`
}

// DisplayTitle is the title shown by the player.
func (m MediaItem) DisplayTitle() string {
	if m.SeriesName != "" && m.Name != "" {
		return m.SeriesName + " - " + m.Name
	}
	return m.Name
}

// ResumePosition is where playback should start.
func (m MediaItem) ResumePosition() time.Duration {
	return TicksToDuration(m.UserData.PlaybackPositionTicks)
}

// MediaSourceID returns the first media source id, falling back to the item id.
func (m MediaItem) MediaSourceID() string {
	if len(m.MediaSources) > 0 && m.MediaSources[0].ID != "" {
		return m.MediaSources[0].ID
	}
	return m.ID
}

// ItemsResponse is a paged listing.
type ItemsResponse struct {
	Items            []MediaItem `json:"Items"`
	TotalRecordCount int         `json:"TotalRecordCount"`
}
