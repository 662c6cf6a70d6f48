// Package resolver turns an abstract control description into a live,
// verified element handle. Each control carries an ordered list of
// strategies; the first one that locates a visible element and passes its
// verification wins. Adding a fallback for a shifted UI is a data change
// in the strategy list, not new control flow.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"claimpilot/internal/driver"
)

// Verify checks that a located handle really is the intended control.
// Near-identical controls (an "MRN" filter next to a "Custom ID" filter)
// make locating without verifying unsafe.
type Verify func(ctx context.Context, d driver.Driver, h driver.Handle) error

// Strategy is one way the current UI might expose a control.
type Strategy struct {
	// Name labels the strategy in failure reports.
	Name string
	// Locate describes where to look.
	Locate driver.Descriptor
	// Verify, when set, must accept the handle before it is returned.
	Verify Verify
}

// Attempt records one failed strategy for the ResolutionError report.
type Attempt struct {
	Strategy string
	Reason   string
}

// ResolutionError is raised when every strategy for a control failed. It
// carries each attempt's failure reason.
type ResolutionError struct {
	Control  string
	Attempts []Attempt
}

func (e *ResolutionError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = fmt.Sprintf("%s: %s", a.Strategy, a.Reason)
	}
	return fmt.Sprintf("resolve %s: all %d strategies failed [%s]",
		e.Control, len(e.Attempts), strings.Join(reasons, "; "))
}

// Control is an abstract UI control with its fallback chain.
type Control struct {
	Name       string
	Strategies []Strategy
}

// Resolver evaluates controls against a driver with a bounded wait per
// strategy.
type Resolver struct {
	drv     driver.Driver
	timeout time.Duration
}

// New creates a resolver. timeout bounds the visibility wait of each
// individual strategy.
func New(drv driver.Driver, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{drv: drv, timeout: timeout}
}

// Resolve evaluates the control's strategies in declaration order and
// returns the first visible, verified handle. If all strategies fail it
// returns a ResolutionError listing every attempt.
func (r *Resolver) Resolve(ctx context.Context, c Control) (driver.Handle, error) {
	attempts := make([]Attempt, 0, len(c.Strategies))

	for _, s := range c.Strategies {
		h, err := r.drv.Locate(ctx, s.Locate)
		if err != nil {
			attempts = append(attempts, Attempt{Strategy: s.Name, Reason: "locate: " + err.Error()})
			continue
		}
		if err := r.drv.WaitVisible(ctx, h, r.timeout); err != nil {
			attempts = append(attempts, Attempt{Strategy: s.Name, Reason: "visibility: " + err.Error()})
			continue
		}
		if s.Verify != nil {
			if err := s.Verify(ctx, r.drv, h); err != nil {
				attempts = append(attempts, Attempt{Strategy: s.Name, Reason: "verify: " + err.Error()})
				continue
			}
		}
		return h, nil
	}

	return nil, &ResolutionError{Control: c.Name, Attempts: attempts}
}

// VerifyHeaderAbove returns a Verify that confirms the column header
// directly above a filter control textually matches the intended column
// name. headerDesc locates the header cell for the same column position.
func VerifyHeaderAbove(headerDesc driver.Descriptor, want string) Verify {
	return func(ctx context.Context, d driver.Driver, _ driver.Handle) error {
		header, err := d.Locate(ctx, headerDesc)
		if err != nil {
			return fmt.Errorf("header lookup: %w", err)
		}
		text, err := d.Text(ctx, header)
		if err != nil {
			return fmt.Errorf("header text: %w", err)
		}
		if !strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(want)) {
			return fmt.Errorf("header %q does not match column %q", strings.TrimSpace(text), want)
		}
		return nil
	}
}

// VerifyTextContains returns a Verify that requires the handle's own text
// to contain want (case-insensitive).
func VerifyTextContains(want string) Verify {
	return func(ctx context.Context, d driver.Driver, h driver.Handle) error {
		text, err := d.Text(ctx, h)
		if err != nil {
			return err
		}
		if !strings.Contains(strings.ToLower(text), strings.ToLower(want)) {
			return fmt.Errorf("text %q does not contain %q", text, want)
		}
		return nil
	}
}
