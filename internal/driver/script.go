package driver

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Element is one canned page element for the script driver.
type Element struct {
	Selector string
	Text     string
	Visible  bool
	// Value holds the element's current input value. Fill appends rather
	// than replaces, mimicking the portal filter fields that concatenate;
	// tests rely on this to prove remove-then-set semantics.
	Value string
}

// Call records one driver invocation, in order.
type Call struct {
	Op     string
	Target string
	Value  string
}

// Script is a deterministic in-memory Driver for tests. It replays a
// canned element set, records every call, and can be told to fail
// specific operations.
type Script struct {
	elements    []*Element
	calls       []Call
	failures    map[string]error
	sessionOpen bool
	navigated   []string
}

// NewScript returns a script driver with an open session and no elements.
func NewScript() *Script {
	return &Script{
		failures:    make(map[string]error),
		sessionOpen: true,
	}
}

// Add registers a canned element.
func (s *Script) Add(el *Element) *Script {
	s.elements = append(s.elements, el)
	return s
}

// AddVisible registers a visible element with the given selector and text.
func (s *Script) AddVisible(selector, text string) *Element {
	el := &Element{Selector: selector, Text: text, Visible: true}
	s.elements = append(s.elements, el)
	return el
}

// FailWith makes every future call of op against selector return err.
func (s *Script) FailWith(op, selector string, err error) {
	s.failures[op+" "+selector] = err
}

// Element returns the first registered element matching selector whose
// text contains text (empty text matches any), or nil.
func (s *Script) Element(selector, text string) *Element {
	for _, el := range s.elements {
		if el.Selector == selector && (text == "" || strings.Contains(el.Text, text)) {
			return el
		}
	}
	return nil
}

// ClearFailure removes a previously registered failure.
func (s *Script) ClearFailure(op, selector string) {
	delete(s.failures, op+" "+selector)
}

// CloseSession flips the driver into a session-lost state.
func (s *Script) CloseSession() { s.sessionOpen = false }

// Calls returns the full ordered call log.
func (s *Script) Calls() []Call { return s.calls }

// CallsFor returns the ordered calls matching op.
func (s *Script) CallsFor(op string) []Call {
	var out []Call
	for _, c := range s.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

type scriptHandle struct {
	el *Element
}

func (h *scriptHandle) Describe() string { return h.el.Selector }

func (s *Script) record(op, target, value string) {
	s.calls = append(s.calls, Call{Op: op, Target: target, Value: value})
}

func (s *Script) fail(op, target string) error {
	if err, ok := s.failures[op+" "+target]; ok {
		return err
	}
	return nil
}

func (s *Script) matches(d Descriptor) []*Element {
	var out []*Element
	for _, el := range s.elements {
		if el.Selector != d.Selector {
			continue
		}
		if d.Text != "" && !strings.Contains(el.Text, d.Text) {
			continue
		}
		out = append(out, el)
	}
	return out
}

func (s *Script) Navigate(_ context.Context, url string) error {
	s.record("navigate", url, "")
	if err := s.fail("navigate", url); err != nil {
		return err
	}
	s.navigated = append(s.navigated, url)
	return nil
}

// Navigated returns the URLs visited, in order.
func (s *Script) Navigated() []string { return s.navigated }

func (s *Script) Locate(_ context.Context, d Descriptor) (Handle, error) {
	s.record("locate", d.String(), "")
	if err := s.fail("locate", d.Selector); err != nil {
		return nil, err
	}
	matched := s.matches(d)
	if d.Index >= len(matched) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, d)
	}
	return &scriptHandle{el: matched[d.Index]}, nil
}

func (s *Script) Click(_ context.Context, h Handle) error {
	s.record("click", h.Describe(), "")
	return s.fail("click", h.Describe())
}

func (s *Script) Fill(_ context.Context, h Handle, text string) error {
	s.record("fill", h.Describe(), text)
	if err := s.fail("fill", h.Describe()); err != nil {
		return err
	}
	h.(*scriptHandle).el.Value += text
	return nil
}

func (s *Script) Clear(_ context.Context, h Handle) error {
	s.record("clear", h.Describe(), "")
	if err := s.fail("clear", h.Describe()); err != nil {
		return err
	}
	h.(*scriptHandle).el.Value = ""
	return nil
}

func (s *Script) Press(_ context.Context, h Handle, key string) error {
	s.record("press", h.Describe(), key)
	return s.fail("press", h.Describe())
}

func (s *Script) WaitVisible(_ context.Context, h Handle, _ time.Duration) error {
	s.record("wait_visible", h.Describe(), "")
	if err := s.fail("wait_visible", h.Describe()); err != nil {
		return err
	}
	if !h.(*scriptHandle).el.Visible {
		return fmt.Errorf("%w: %s not visible", ErrNotFound, h.Describe())
	}
	return nil
}

func (s *Script) Query(_ context.Context, d Descriptor) ([]Handle, error) {
	s.record("query", d.String(), "")
	if err := s.fail("query", d.Selector); err != nil {
		return nil, err
	}
	matched := s.matches(d)
	out := make([]Handle, len(matched))
	for i, el := range matched {
		out[i] = &scriptHandle{el: el}
	}
	return out, nil
}

func (s *Script) Text(_ context.Context, h Handle) (string, error) {
	s.record("text", h.Describe(), "")
	if err := s.fail("text", h.Describe()); err != nil {
		return "", err
	}
	return h.(*scriptHandle).el.Text, nil
}

func (s *Script) Eval(_ context.Context, h Handle, js string) error {
	s.record("eval", h.Describe(), js)
	return s.fail("eval", h.Describe())
}

func (s *Script) IsSessionOpen() bool { return s.sessionOpen }

func (s *Script) Close() error {
	s.record("close", "", "")
	s.sessionOpen = false
	return nil
}
