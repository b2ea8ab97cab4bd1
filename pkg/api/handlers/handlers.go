package handlers

import (
	"log/slog"

	"parallax-hq/parallax/pkg/query"
	"parallax-hq/parallax/pkg/store"
	"parallax-hq/parallax/pkg/usage"
)

// Handlers bundles the dependencies shared by all endpoint handlers.
type Handlers struct {
	engine *query.Engine
	store  store.Store
	usage  usage.Tracker
	logger *slog.Logger
}

// New creates the handler set. The usage tracker may be nil; the usage
// endpoint then reports empty summaries.
func New(engine *query.Engine, st store.Store, tracker usage.Tracker, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		engine: engine,
		store:  st,
		usage:  tracker,
		logger: logger,
	}
}
