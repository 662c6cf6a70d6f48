package portal

import (
	"claimpilot/internal/config"
	"claimpilot/internal/driver"
	"claimpilot/internal/resolver"
)

// Engine drives the portal UI for one run. It owns no goroutines and is
// not safe for concurrent use; the single run loop calls it in input
// order.
type Engine struct {
	drv    driver.Driver
	res    *resolver.Resolver
	cfg    config.Config
	dryRun bool
}

// NewEngine creates an engine over an already-started driver.
func NewEngine(drv driver.Driver, cfg config.Config, dryRun bool) *Engine {
	return &Engine{
		drv:    drv,
		res:    resolver.New(drv, cfg.Browser.LocateTimeout()),
		cfg:    cfg,
		dryRun: dryRun,
	}
}

// sessionGone reports whether err, or the driver's own state, indicates
// the shared UI surface is unusable. This is the only condition that
// halts remaining rows.
func (e *Engine) sessionGone(err error) bool {
	return driver.IsSessionLost(err) || !e.drv.IsSessionOpen()
}
