package detail

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const (
	// ButtonID is the reserved DOM id of the injected button.
	ButtonID = "jellyPot"

	containerSelector = "div#itemDetailPage:not(.hide)"
	anchorSelector    = ".mainDetailButtons .detailButton[data-action='resume']"
)

var (
	// ButtonSelector matches the injected button inside a visible detail page.
	ButtonSelector = containerSelector + " #" + ButtonID
	// AnchorSelector matches the resume button the injected button is placed before.
	AnchorSelector = containerSelector + " " + anchorSelector

	buttonMatcher    = cascadia.MustCompile(ButtonSelector)
	anchorMatcher    = cascadia.MustCompile(AnchorSelector)
	containerMatcher = cascadia.MustCompile(containerSelector)
)

// Snapshot is a parsed copy of the page DOM taken at one tick.
type Snapshot struct {
	root *html.Node
}

// ParseSnapshot parses serialized page markup.
func ParseSnapshot(markup string) (*Snapshot, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse page snapshot: %w", err)
	}
	return &Snapshot{root: root}, nil
}

// NewSnapshot wraps an already parsed document.
func NewSnapshot(root *html.Node) *Snapshot {
	return &Snapshot{root: root}
}

// Root returns the document node.
func (s *Snapshot) Root() *html.Node {
	if s == nil {
		return nil
	}
	return s.root
}

// DetailVisible reports whether a non-hidden detail page container exists.
func (s *Snapshot) DetailVisible() bool {
	return s.query(containerMatcher) != nil
}

// Button returns the injected button inside a visible detail page, or nil.
func (s *Snapshot) Button() *html.Node {
	return s.query(buttonMatcher)
}

// Anchor returns the resume button inside a visible detail page, or nil.
func (s *Snapshot) Anchor() *html.Node {
	return s.query(anchorMatcher)
}

// ButtonCount counts injected buttons inside visible detail pages.
func (s *Snapshot) ButtonCount() int {
	if s == nil || s.root == nil {
		return 0
	}
	return len(cascadia.QueryAll(s.root, buttonMatcher))
}

func (s *Snapshot) query(m cascadia.Matcher) *html.Node {
	if s == nil || s.root == nil {
		return nil
	}
	return cascadia.Query(s.root, m)
}

// Action is the outcome of one injector tick.
type Action int

const (
	// ActionNone means the button is already present.
	ActionNone Action = iota
	// ActionWait means the page is not ready: no visible detail page or no
	// resume button to anchor to.
	ActionWait
	// ActionInsert means the button must be inserted before the anchor.
	ActionInsert
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "present"
	case ActionWait:
		return "not_ready"
	case ActionInsert:
		return "insert"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Plan computes what a tick should do for the given snapshot.
func Plan(s *Snapshot) Action {
	if s.Button() != nil {
		return ActionNone
	}
	if s.Anchor() == nil {
		return ActionWait
	}
	return ActionInsert
}
