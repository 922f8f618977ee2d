package detail_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"jellypot/internal/detail"
	"jellypot/internal/logging"
)

const visiblePage = `<html><body>
<div id="itemDetailPage" class="page">
  <div class="mainDetailButtons">
    <button class="detailButton" data-action="play"></button>
    <button class="detailButton" data-action="resume"></button>
  </div>
</div>
</body></html>`

const hiddenPage = `<html><body>
<div id="itemDetailPage" class="page hide">
  <div class="mainDetailButtons">
    <button class="detailButton" data-action="resume"></button>
  </div>
</div>
</body></html>`

const noResumePage = `<html><body>
<div id="itemDetailPage" class="page">
  <div class="mainDetailButtons">
    <button class="detailButton" data-action="play"></button>
  </div>
</div>
</body></html>`

// treePage applies insertions to an in-memory document the way the browser
// script does.
type treePage struct {
	root     *html.Node
	inserts  int
	failures int
}

func newTreePage(t *testing.T, markup string) *treePage {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	return &treePage{root: root}
}

func (p *treePage) Snapshot(context.Context) (*detail.Snapshot, error) {
	if p.failures > 0 {
		p.failures--
		return nil, errors.New("cdp connection reset")
	}
	return detail.NewSnapshot(p.root), nil
}

func (p *treePage) InsertButton(_ context.Context, spec detail.ButtonSpec) error {
	anchor := detail.NewSnapshot(p.root).Anchor()
	if anchor == nil {
		return errors.New("anchor vanished")
	}
	nodes, err := html.ParseFragment(strings.NewReader(spec.Markup()), anchor.Parent)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		anchor.Parent.InsertBefore(n, anchor)
	}
	p.inserts++
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func testSpec() detail.ButtonSpec {
	return detail.ButtonSpec{Title: "Potplayer", IconURL: "https://example.com/icon.webp"}
}

func TestPlanInsertsOnlyWhenAnchorVisible(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   detail.Action
	}{
		{name: "visible detail page", markup: visiblePage, want: detail.ActionInsert},
		{name: "hidden detail page", markup: hiddenPage, want: detail.ActionWait},
		{name: "no resume button", markup: noResumePage, want: detail.ActionWait},
		{name: "not a detail page", markup: `<html><body><div id="homePage"></div></body></html>`, want: detail.ActionWait},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := detail.ParseSnapshot(tc.markup)
			if err != nil {
				t.Fatalf("ParseSnapshot: %v", err)
			}
			if got := detail.Plan(snap); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTickIsIdempotent(t *testing.T) {
	page := newTreePage(t, visiblePage)
	injector := detail.NewInjector(page, testSpec(), time.Millisecond, logging.NewNop())

	first, err := injector.Tick(context.Background())
	if err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if first != detail.ActionInsert {
		t.Fatalf("expected first tick to insert, got %s", first)
	}
	for i := 0; i < 20; i++ {
		action, err := injector.Tick(context.Background())
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if action != detail.ActionNone {
			t.Fatalf("tick %d: expected %s, got %s", i, detail.ActionNone, action)
		}
	}

	snap := detail.NewSnapshot(page.root)
	if page.inserts != 1 {
		t.Fatalf("expected one insertion, got %d", page.inserts)
	}
	if count := snap.ButtonCount(); count != 1 {
		t.Fatalf("expected one button in document, got %d", count)
	}
}

func TestInsertedButtonPrecedesResumeButton(t *testing.T) {
	page := newTreePage(t, visiblePage)
	injector := detail.NewInjector(page, testSpec(), time.Millisecond, logging.NewNop())
	if _, err := injector.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	snap := detail.NewSnapshot(page.root)
	button := snap.Button()
	if button == nil {
		t.Fatal("expected button after tick")
	}
	next := button.NextSibling
	for next != nil && next.Type != html.ElementNode {
		next = next.NextSibling
	}
	if next == nil || attr(next, "data-action") != "resume" {
		t.Fatalf("expected button immediately before resume button, got %+v", next)
	}
	if attr(button, "title") != "Potplayer" {
		t.Fatalf("unexpected title %q", attr(button, "title"))
	}
	if attr(button, detail.StateAttr) != detail.StateIdle {
		t.Fatalf("expected idle state, got %q", attr(button, detail.StateAttr))
	}
	content := button.FirstChild
	if content == nil || content.FirstChild == nil {
		t.Fatal("expected icon span inside button")
	}
	style := attr(content.FirstChild, "style")
	if !strings.Contains(style, "url(https://example.com/icon.webp)") || !strings.Contains(style, "background-size: 100% 100%") {
		t.Fatalf("unexpected icon style %q", style)
	}
}

func TestHiddenPageButtonDoesNotBlockVisiblePage(t *testing.T) {
	markup := `<html><body>
<div id="itemDetailPage" class="page hide">
  <div class="mainDetailButtons"><button id="jellyPot"></button><button class="detailButton" data-action="resume"></button></div>
</div>
<div id="itemDetailPage" class="page">
  <div class="mainDetailButtons"><button class="detailButton" data-action="resume"></button></div>
</div>
</body></html>`
	snap, err := detail.ParseSnapshot(markup)
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}
	if got := detail.Plan(snap); got != detail.ActionInsert {
		t.Fatalf("expected insert, got %s", got)
	}
}

func TestNoInsertWhileHidden(t *testing.T) {
	page := newTreePage(t, hiddenPage)
	injector := detail.NewInjector(page, testSpec(), time.Millisecond, logging.NewNop())
	for i := 0; i < 5; i++ {
		action, err := injector.Tick(context.Background())
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if action != detail.ActionWait {
			t.Fatalf("expected wait, got %s", action)
		}
	}
	if page.inserts != 0 {
		t.Fatalf("expected no insertions, got %d", page.inserts)
	}
}

func TestRunRetriesAfterSnapshotFailure(t *testing.T) {
	page := newTreePage(t, visiblePage)
	page.failures = 3
	injector := detail.NewInjector(page, testSpec(), 2*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := injector.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if page.inserts != 1 {
		t.Fatalf("expected exactly one insertion after recovery, got %d", page.inserts)
	}
}

func TestMarkupEscapesTitle(t *testing.T) {
	spec := detail.ButtonSpec{Title: `Pot"player<`}
	markup := spec.Markup()
	if strings.Contains(markup, `Pot"player<`) {
		t.Fatalf("expected title to be escaped: %s", markup)
	}
	if strings.Contains(markup, "style=") {
		t.Fatalf("expected no icon style without icon url: %s", markup)
	}
}
