package crawler

import (
	"context"

	"go.uber.org/zap"

	"sitecheck/pkg/logger"
)

// EventKind identifies the crawl stage an Event belongs to.
type EventKind string

const (
	// EventResolving is emitted when candidate discovery starts.
	EventResolving EventKind = "resolving"
	// EventChecking is emitted once the candidate set is known.
	EventChecking EventKind = "checking"
	// EventPageChecked is emitted after each page check.
	EventPageChecked EventKind = "page_checked"
	// EventDone is emitted when the crawl finishes.
	EventDone EventKind = "done"
	// EventFailed is emitted when the crawl fails before checking any pages.
	EventFailed EventKind = "failed"
)

// Event reports crawl progress for a single stage or checked URL.
type Event struct {
	Kind    EventKind
	URL     string
	Status  int
	Err     string
	Checked int
	Broken  int
	Total   int
}

// Observer receives progress events from a running crawl. Implementations
// must be safe for concurrent use when the crawl runs with multiple workers.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Observe(context.Context, Event) {}

// LogObserver writes events to the context logger at debug level, with
// per-page failures at warn.
type LogObserver struct{}

func (LogObserver) Observe(ctx context.Context, ev Event) {
	fields := []zap.Field{
		zap.String("kind", string(ev.Kind)),
		zap.String("url", ev.URL),
		zap.Int("checked", ev.Checked),
		zap.Int("broken", ev.Broken),
		zap.Int("total", ev.Total),
	}
	if ev.Status != 0 {
		fields = append(fields, zap.Int("status", ev.Status))
	}
	if ev.Err != "" {
		fields = append(fields, zap.String("error", ev.Err))
		logger.Warn(ctx, "crawl event", fields...)

		return
	}

	logger.Debug(ctx, "crawl event", fields...)
}
