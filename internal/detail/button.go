package detail

import (
	"fmt"
	"html"
	"strings"
)

// ButtonSpec describes the injected button.
type ButtonSpec struct {
	Title   string
	IconURL string
}

// State values carried by the button's data-jellypot-state attribute.
const (
	StateIdle    = "idle"
	StateBusy    = "busy"
	StateError   = "error"
	StateAttr    = "data-jellypot-state"
	iconClass    = "icon-jellypot"
	buttonClass  = "button-flat btnPlay detailButton emby-button"
	contentClass = "detailButton-content"
)

// IconStyle returns the inline style that paints the icon image.
func (b ButtonSpec) IconStyle() string {
	if strings.TrimSpace(b.IconURL) == "" {
		return ""
	}
	return fmt.Sprintf("background: url(%s) no-repeat; background-size: 100%% 100%%", b.IconURL)
}

// Markup renders the button element. It matches the host's own detail
// buttons so the web client's stylesheet applies to it.
func (b ButtonSpec) Markup() string {
	var sb strings.Builder
	sb.WriteString(`<button id="`)
	sb.WriteString(ButtonID)
	sb.WriteString(`" type="button" class="`)
	sb.WriteString(buttonClass)
	sb.WriteString(`" title="`)
	sb.WriteString(html.EscapeString(b.Title))
	sb.WriteString(`" `)
	sb.WriteString(StateAttr)
	sb.WriteString(`="`)
	sb.WriteString(StateIdle)
	sb.WriteString(`"><div class="`)
	sb.WriteString(contentClass)
	sb.WriteString(`"><span class="material-icons detailButton-icon `)
	sb.WriteString(iconClass)
	sb.WriteString(`"`)
	if style := b.IconStyle(); style != "" {
		sb.WriteString(` style="`)
		sb.WriteString(html.EscapeString(style))
		sb.WriteString(`"`)
	}
	sb.WriteString(`></span></div></button>`)
	return sb.String()
}
