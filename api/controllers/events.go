package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/premiumstore/premiumstore-backend/api/middleware"
	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
)

const eventsHeartbeat = 25 * time.Second

// Events streams the session's store-change events over SSE. The
// storefront uses this instead of polling: cart badges, wishlist
// hearts, and totals re-render when an event for their topic arrives.
func Events(bus *pubsub.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionID(ctx)

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(ctx, logg, w, errors.New(errors.CodeInternal, "streaming unsupported"))
			return
		}

		events, cancel := bus.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(eventsHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				if event.SessionID != sessionID {
					continue
				}
				payload, err := json.Marshal(event)
				if err != nil {
					logg.Error(ctx, "encode sse event", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, payload)
				flusher.Flush()
			}
		}
	}
}
