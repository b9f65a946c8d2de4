package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/handler/http/middleware"
	"github.com/staffpay/staffpay-backend-go/internal/handler/http/response"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/jwt"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
)

// Subscriber is the part of sse.Hub the stream handler needs.
type Subscriber interface {
	Subscribe(topics ...string) (chan sse.Event, func())
}

type EventsHandler interface {
	// IssueToken returns a short-lived token for EventSource clients.
	IssueToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	hub        Subscriber
	jwtService jwt.Service
	keepalive  time.Duration
}

func NewEventsHandler(hub Subscriber, jwtService jwt.Service) EventsHandler {
	return &eventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		keepalive:  30 * time.Second,
	}
}

var allTopics = []string{sse.TopicSettings, sse.TopicPayroll, sse.TopicRoster}

// parseTopics reads a comma separated topics parameter, defaulting to all.
func parseTopics(raw string) []string {
	if raw == "" {
		return allTopics
	}
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		for _, known := range allTopics {
			if t == known {
				topics = append(topics, t)
				break
			}
		}
	}
	if len(topics) == 0 {
		return allTopics
	}
	return topics
}

// IssueToken implements EventsHandler.
func (h *eventsHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"token":     token,
		"expiresIn": expiresIn,
	})
}

// Stream handles the SSE connection for dashboard updates
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token comes in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	topics := parseTopics(r.URL.Query().Get("topics"))
	events, cleanup := h.hub.Subscribe(topics...)
	defer cleanup()

	connected, _ := json.Marshal(map[string]interface{}{
		"status": "connected",
		"userId": userID,
		"topics": topics,
	})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", connected)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
