package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"jellypot/internal/bridge"
	"jellypot/internal/detail"
	"jellypot/internal/launcher"
	"jellypot/internal/logging"
)

// Page is the Jellyfin web client tab.
type Page struct {
	rp     *rod.Page
	logger *slog.Logger
}

func newPage(rp *rod.Page, logger *slog.Logger) *Page {
	return &Page{rp: rp, logger: logging.NewComponentLogger(logger, "page")}
}

// evalString evaluates js with args and returns its string result.
func (p *Page) evalString(ctx context.Context, js string, args ...any) (string, error) {
	res, err := p.rp.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *Page) evalBool(ctx context.Context, js string, args ...any) (bool, error) {
	res, err := p.rp.Context(ctx).Eval(js, args...)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// Snapshot serializes the current document.
func (p *Page) Snapshot(ctx context.Context) (*detail.Snapshot, error) {
	markup, err := p.evalString(ctx, snapshotJS)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return detail.ParseSnapshot(markup)
}

// InsertButton places the button before the resume button and wires its
// click to the activation binding.
func (p *Page) InsertButton(ctx context.Context, spec detail.ButtonSpec) error {
	inserted, err := p.evalBool(ctx, insertButtonJS, spec.Markup(), detail.AnchorSelector, detail.ButtonSelector, BindingName)
	if err != nil {
		return err
	}
	if !inserted {
		p.logger.Debug("page changed before insertion")
	}
	return nil
}

// SetButtonState updates the visible state of the injected button.
func (p *Page) SetButtonState(ctx context.Context, state, message string) error {
	_, err := p.evalBool(ctx, setStateJS, detail.ButtonSelector, detail.StateAttr, state, message)
	return err
}

// AppendFrame attaches a hidden iframe with element id and source src.
func (p *Page) AppendFrame(ctx context.Context, id, src string) error {
	_, err := p.evalString(ctx, appendFrameJS, id, src)
	return err
}

// RemoveFrame detaches the frame with element id, if it is still attached.
func (p *Page) RemoveFrame(ctx context.Context, id string) error {
	_, err := p.evalBool(ctx, removeFrameJS, id)
	return err
}

// Activations installs the click binding and streams calls to it. The
// binding survives in-app navigation and full reloads of the tab.
func (p *Page) Activations(ctx context.Context) (<-chan bridge.Activation, error) {
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(p.rp); err != nil {
		return nil, fmt.Errorf("add binding %s: %w", BindingName, err)
	}

	out := make(chan bridge.Activation, 16)
	wait := p.rp.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != BindingName {
			return
		}
		act := bridge.Activation{Fragment: e.Payload, ReceivedAt: time.Now()}
		select {
		case out <- act:
		case <-ctx.Done():
		}
	})
	go func() {
		wait()
		close(out)
	}()
	return out, nil
}

// API returns a HostAPI backed by the page's own ApiClient.
func (p *Page) API() *PageAPI {
	return NewPageAPI(p)
}

var (
	_ bridge.Page        = (*Page)(nil)
	_ launcher.FrameHost = (*Page)(nil)
)
