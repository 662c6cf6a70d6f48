// Package driver defines the automation boundary between the claim
// orchestration engine and a live browser. The engine only ever talks to
// the Driver interface; the rod implementation drives a real Chrome while
// the script implementation replays canned pages for tests.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Locate when no element matches a descriptor.
var ErrNotFound = errors.New("element not found")

// Descriptor describes how to locate an element. Selector is a CSS
// selector; Text, when set, additionally requires the element's visible
// text to contain it; Index picks the nth match (0-based) when a selector
// matches several elements.
type Descriptor struct {
	Selector string
	Text     string
	Index    int
}

func (d Descriptor) String() string {
	s := d.Selector
	if d.Text != "" {
		s += fmt.Sprintf(" [text~%q]", d.Text)
	}
	if d.Index > 0 {
		s += fmt.Sprintf(" [#%d]", d.Index)
	}
	return s
}

// Handle is an opaque reference to a located element.
type Handle interface {
	Describe() string
}

// Driver is the minimal surface the orchestration engine needs. All
// blocking operations take a context; implementations are not safe for
// concurrent use, matching the single-threaded session model.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, d Descriptor) (Handle, error)
	Click(ctx context.Context, h Handle) error
	Fill(ctx context.Context, h Handle, text string) error
	Clear(ctx context.Context, h Handle) error
	Press(ctx context.Context, h Handle, key string) error
	WaitVisible(ctx context.Context, h Handle, timeout time.Duration) error
	Query(ctx context.Context, d Descriptor) ([]Handle, error)
	Text(ctx context.Context, h Handle) (string, error)
	// Eval runs a snippet against the element, used to unlock readonly
	// fields the portal refuses to make editable.
	Eval(ctx context.Context, h Handle, js string) error
	IsSessionOpen() bool
	Close() error
}

// ActionError wraps a driver action that failed after its target element
// had already been resolved, typically a race with page state.
type ActionError struct {
	Op     string
	Target string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Target, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// SessionLostError marks the shared UI surface as unusable. It aborts all
// remaining rows; accumulated results are still persisted.
type SessionLostError struct {
	Reason string
}

func (e *SessionLostError) Error() string {
	return fmt.Sprintf("session lost: %s", e.Reason)
}

// IsSessionLost reports whether err (or anything it wraps) is a
// SessionLostError.
func IsSessionLost(err error) bool {
	var sl *SessionLostError
	return errors.As(err, &sl)
}
