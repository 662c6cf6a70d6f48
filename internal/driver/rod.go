package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config holds browser configuration for the rod driver.
type Config struct {
	DebuggerURL         string `yaml:"debugger_url"`
	Bin                 string `yaml:"bin"`
	Headless            bool   `yaml:"headless"`
	ViewportWidth       int    `yaml:"viewport_width"`
	ViewportHeight      int    `yaml:"viewport_height"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
	LocateTimeoutMs     int    `yaml:"locate_timeout_ms"`
	SettleMs            int    `yaml:"settle_ms"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		NavigationTimeoutMs: 30000,
		LocateTimeoutMs:     5000,
		SettleMs:            250,
	}
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// LocateTimeout returns the per-locate bounded wait.
func (c Config) LocateTimeout() time.Duration {
	if c.LocateTimeoutMs == 0 {
		return 5 * time.Second
	}
	return time.Duration(c.LocateTimeoutMs) * time.Millisecond
}

// Settle returns the post-action settle delay.
func (c Config) Settle() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}

// Rod drives a real Chrome through go-rod. Not safe for concurrent use;
// the run loop owns it exclusively.
type Rod struct {
	cfg     Config
	browser *rod.Browser
	page    *rod.Page
}

// NewRod creates an unstarted rod driver.
func NewRod(cfg Config) *Rod {
	return &Rod{cfg: cfg}
}

// Start connects to an existing Chrome or launches a new one, then opens
// the single page the whole run operates on.
func (r *Rod) Start(ctx context.Context) error {
	controlURL := r.cfg.DebuggerURL
	if controlURL == "" {
		launch := launcher.New().Headless(r.cfg.Headless)
		if r.cfg.Bin != "" {
			launch = launch.Bin(r.cfg.Bin)
		}
		url, err := launch.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	r.browser = browser
	r.page = page
	return nil
}

type rodHandle struct {
	el   *rod.Element
	desc string
}

func (h *rodHandle) Describe() string { return h.desc }

func (r *Rod) settle() {
	if r.cfg.SettleMs > 0 {
		time.Sleep(r.cfg.Settle())
	}
}

func (r *Rod) Navigate(ctx context.Context, url string) error {
	if r.page == nil {
		return &SessionLostError{Reason: "no page"}
	}
	page := r.page.Context(ctx).Timeout(r.cfg.NavigationTimeout())
	if err := page.Navigate(url); err != nil {
		return &ActionError{Op: "navigate", Target: url, Err: err}
	}
	_ = page.WaitLoad()
	r.settle()
	return nil
}

// Locate polls for an element matching the descriptor until the bounded
// wait elapses. Elements are matched immediately rather than through
// rod's blocking Element call so that text and index filters apply
// uniformly.
func (r *Rod) Locate(ctx context.Context, d Descriptor) (Handle, error) {
	if r.page == nil {
		return nil, &SessionLostError{Reason: "no page"}
	}

	deadline := time.Now().Add(r.cfg.LocateTimeout())
	for {
		h, err := r.locateOnce(ctx, d)
		if err == nil {
			return h, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, d)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (r *Rod) locateOnce(ctx context.Context, d Descriptor) (Handle, error) {
	els, err := r.page.Context(ctx).Elements(d.Selector)
	if err != nil {
		return nil, err
	}
	idx := 0
	for _, el := range els {
		if d.Text != "" {
			txt, terr := el.Text()
			if terr != nil || !strings.Contains(txt, d.Text) {
				continue
			}
		}
		if idx == d.Index {
			return &rodHandle{el: el, desc: d.String()}, nil
		}
		idx++
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, d)
}

func (r *Rod) Click(ctx context.Context, h Handle) error {
	el := h.(*rodHandle)
	if err := el.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &ActionError{Op: "click", Target: el.desc, Err: err}
	}
	r.settle()
	return nil
}

func (r *Rod) Fill(ctx context.Context, h Handle, text string) error {
	el := h.(*rodHandle)
	if err := el.el.Context(ctx).Input(text); err != nil {
		return &ActionError{Op: "fill", Target: el.desc, Err: err}
	}
	r.settle()
	return nil
}

func (r *Rod) Clear(ctx context.Context, h Handle) error {
	el := h.(*rodHandle)
	if err := el.el.Context(ctx).SelectAllText(); err != nil {
		return &ActionError{Op: "clear", Target: el.desc, Err: err}
	}
	if err := el.el.Context(ctx).Type(input.Backspace); err != nil {
		return &ActionError{Op: "clear", Target: el.desc, Err: err}
	}
	r.settle()
	return nil
}

var keyMap = map[string]input.Key{
	"Enter":     input.Enter,
	"Tab":       input.Tab,
	"Escape":    input.Escape,
	"Backspace": input.Backspace,
}

func (r *Rod) Press(ctx context.Context, h Handle, key string) error {
	el := h.(*rodHandle)
	k, ok := keyMap[key]
	if !ok {
		return &ActionError{Op: "press", Target: el.desc, Err: fmt.Errorf("unknown key %q", key)}
	}
	if err := el.el.Context(ctx).Type(k); err != nil {
		return &ActionError{Op: "press", Target: el.desc, Err: err}
	}
	r.settle()
	return nil
}

func (r *Rod) WaitVisible(ctx context.Context, h Handle, timeout time.Duration) error {
	el := h.(*rodHandle)
	if err := el.el.Context(ctx).Timeout(timeout).WaitVisible(); err != nil {
		return &ActionError{Op: "wait_visible", Target: el.desc, Err: err}
	}
	return nil
}

func (r *Rod) Query(ctx context.Context, d Descriptor) ([]Handle, error) {
	if r.page == nil {
		return nil, &SessionLostError{Reason: "no page"}
	}
	els, err := r.page.Context(ctx).Elements(d.Selector)
	if err != nil {
		return nil, &ActionError{Op: "query", Target: d.String(), Err: err}
	}
	out := make([]Handle, 0, len(els))
	idx := 0
	for _, el := range els {
		if d.Text != "" {
			txt, terr := el.Text()
			if terr != nil || !strings.Contains(txt, d.Text) {
				continue
			}
		}
		out = append(out, &rodHandle{el: el, desc: fmt.Sprintf("%s [#%d]", d.Selector, idx)})
		idx++
	}
	return out, nil
}

func (r *Rod) Text(ctx context.Context, h Handle) (string, error) {
	el := h.(*rodHandle)
	txt, err := el.el.Context(ctx).Text()
	if err != nil {
		return "", &ActionError{Op: "text", Target: el.desc, Err: err}
	}
	return txt, nil
}

func (r *Rod) Eval(ctx context.Context, h Handle, js string) error {
	el := h.(*rodHandle)
	if _, err := el.el.Context(ctx).Eval(js); err != nil {
		return &ActionError{Op: "eval", Target: el.desc, Err: err}
	}
	return nil
}

// IsSessionOpen reports whether the page target is still reachable.
func (r *Rod) IsSessionOpen() bool {
	if r.page == nil {
		return false
	}
	_, err := r.page.Info()
	return err == nil
}

// Close releases the page and browser. Safe to call more than once.
func (r *Rod) Close() error {
	if r.page != nil {
		_ = r.page.Close()
		r.page = nil
	}
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	return err
}
