package internal

import (
	"log/slog"

	"github.com/starford/lotpad/internal/parking"
	"github.com/starford/lotpad/internal/sse"
)

type eventPublisher interface {
	Publish(sse.Event)
}

// lotFeed forwards lot changes to the SSE stream.
type lotFeed struct {
	pub eventPublisher
}

func (f lotFeed) Notify(evt parking.Event) {
	typ := sse.TypeLotEnter
	if evt.Action == parking.ActionExit {
		typ = sse.TypeLotExit
	}
	f.pub.Publish(sse.Event{Type: typ, Data: evt})
}

type lotLog struct {
	logger *slog.Logger
}

func (l lotLog) Notify(evt parking.Event) {
	l.logger.Debug(parking.Format(evt),
		slog.String("lot", evt.Name),
		slog.Int("occupied", evt.Occupied),
		slog.Int("capacity", evt.Capacity))
}
