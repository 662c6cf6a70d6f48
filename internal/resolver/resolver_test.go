package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"claimpilot/internal/driver"
)

func strat(name, selector string) Strategy {
	return Strategy{Name: name, Locate: driver.Descriptor{Selector: selector}}
}

func TestResolveFirstStrategyWins(t *testing.T) {
	script := driver.NewScript()
	script.AddVisible("#mrn-filter", "")
	script.AddVisible("#mrn-filter-alt", "")

	r := New(script, time.Second)
	h, err := r.Resolve(context.Background(), Control{
		Name:       "mrn filter",
		Strategies: []Strategy{strat("primary", "#mrn-filter"), strat("fallback", "#mrn-filter-alt")},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if h.Describe() != "#mrn-filter" {
		t.Errorf("resolved %q, want primary strategy's element", h.Describe())
	}
	// The fallback must never have been probed.
	for _, c := range script.CallsFor("locate") {
		if strings.Contains(c.Target, "alt") {
			t.Error("fallback strategy was attempted even though primary succeeded")
		}
	}
}

func TestResolveExhaustsAllStrategiesInOrder(t *testing.T) {
	script := driver.NewScript()
	script.AddVisible("#v3", "")

	r := New(script, time.Second)
	h, err := r.Resolve(context.Background(), Control{
		Name:       "filter",
		Strategies: []Strategy{strat("s1", "#v1"), strat("s2", "#v2"), strat("s3", "#v3")},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if h.Describe() != "#v3" {
		t.Errorf("resolved %q, want #v3", h.Describe())
	}

	locates := script.CallsFor("locate")
	if len(locates) != 3 {
		t.Fatalf("expected exactly 3 locate attempts, got %d", len(locates))
	}
	for i, want := range []string{"#v1", "#v2", "#v3"} {
		if !strings.Contains(locates[i].Target, want) {
			t.Errorf("attempt %d targeted %q, want %q", i, locates[i].Target, want)
		}
	}
}

func TestResolveReportsEveryFailure(t *testing.T) {
	script := driver.NewScript()

	r := New(script, time.Second)
	_, err := r.Resolve(context.Background(), Control{
		Name:       "save button",
		Strategies: []Strategy{strat("s1", "#a"), strat("s2", "#b"), strat("s3", "#c")},
	})
	if err == nil {
		t.Fatal("expected resolution failure")
	}

	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResolutionError, got %T", err)
	}
	if len(rerr.Attempts) != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", len(rerr.Attempts))
	}
	for i, name := range []string{"s1", "s2", "s3"} {
		if rerr.Attempts[i].Strategy != name {
			t.Errorf("attempt %d strategy = %q, want %q", i, rerr.Attempts[i].Strategy, name)
		}
		if rerr.Attempts[i].Reason == "" {
			t.Errorf("attempt %d has no failure reason", i)
		}
	}
}

func TestResolveSkipsInvisibleElements(t *testing.T) {
	script := driver.NewScript()
	script.Add(&driver.Element{Selector: "#hidden", Visible: false})
	script.AddVisible("#shown", "")

	r := New(script, time.Second)
	h, err := r.Resolve(context.Background(), Control{
		Name:       "button",
		Strategies: []Strategy{strat("hidden", "#hidden"), strat("shown", "#shown")},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if h.Describe() != "#shown" {
		t.Errorf("resolved %q, want the visible element", h.Describe())
	}
}

func TestVerifyHeaderAbove(t *testing.T) {
	script := driver.NewScript()
	script.AddVisible("input.filter", "")
	script.AddVisible("th.col-2", "MRN")

	verify := VerifyHeaderAbove(driver.Descriptor{Selector: "th.col-2"}, "mrn")
	r := New(script, time.Second)

	_, err := r.Resolve(context.Background(), Control{
		Name: "mrn filter",
		Strategies: []Strategy{{
			Name:   "filter under header",
			Locate: driver.Descriptor{Selector: "input.filter"},
			Verify: verify,
		}},
	})
	if err != nil {
		t.Fatalf("verified resolve failed: %v", err)
	}
}

func TestVerifyHeaderAboveRejectsWrongColumn(t *testing.T) {
	script := driver.NewScript()
	script.AddVisible("input.filter", "")
	script.AddVisible("th.col-2", "Custom ID")

	verify := VerifyHeaderAbove(driver.Descriptor{Selector: "th.col-2"}, "MRN")
	r := New(script, time.Second)

	_, err := r.Resolve(context.Background(), Control{
		Name: "mrn filter",
		Strategies: []Strategy{{
			Name:   "filter under header",
			Locate: driver.Descriptor{Selector: "input.filter"},
			Verify: verify,
		}},
	})
	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResolutionError, got %v", err)
	}
	if !strings.Contains(rerr.Error(), "does not match column") {
		t.Errorf("failure reason missing verification detail: %v", rerr)
	}
}
