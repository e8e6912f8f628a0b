package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// streamBuffer bounds how many layout events a slow client may lag behind
// before events are dropped. The next event always carries the full snapshot.
const streamBuffer = 16

// SubscribeLayout handles GET /layout/events (SSE).
// The first event is the current layout; each mutation sends the new one.
func (s *Server) SubscribeLayout(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events := make(chan *domain.LayoutEvent, streamBuffer)
	sub := s.Engine.OnLayoutChanged(func(evt *domain.LayoutEvent) {
		select {
		case events <- evt:
		default:
			s.logger.Warn("layout stream lagging, event dropped", "op", evt.Op)
		}
	})
	defer sub.Remove()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if err := writeEvent(w, "snapshot", s.Engine.Layout()); err != nil {
		s.logger.Warn("write event", "err", err)
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-events:
			if err := writeEvent(w, "layout", evt); err != nil {
				s.logger.Warn("write event", "err", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
