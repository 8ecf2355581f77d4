package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// RoomEvent is a registry notification about a room lifecycle change.
type RoomEvent struct {
	Type string `json:"type"`
	Room Room   `json:"room"`
}

const (
	RoomEventCreated = "room_created"
	RoomEventDeleted = "room_deleted"
)

// Watcher streams room lifecycle notifications from the registry so a worker
// can attach to calls as they are created instead of polling ListRooms.
type Watcher struct {
	baseURL string
	apiKey  string
	dialer  *websocket.Dialer
}

func NewWatcher(baseURL string, opts ...RegistryOption) *Watcher {
	// Reuse registry options for the shared credential knobs.
	c := &RegistryClient{baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient != nil {
		logger.Warn("WithRegistryHTTPClient has no effect on the websocket watcher")
	}

	return &Watcher{
		baseURL: c.baseURL,
		apiKey:  c.apiKey,
		dialer:  websocket.DefaultDialer,
	}
}

// Watch connects to the registry's notification stream and invokes onEvent
// for every received room event. It blocks until the context is cancelled or
// the connection fails.
func (w *Watcher) Watch(ctx context.Context, onEvent func(RoomEvent)) error {
	endpoint, err := w.watchEndpoint()
	if err != nil {
		return err
	}

	header := map[string][]string{}
	if w.apiKey != "" {
		header["Authorization"] = []string{"Bearer " + w.apiKey}
	}

	conn, _, err := w.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return fmt.Errorf("failed to connect to room event stream: %w", err)
	}
	defer conn.Close()

	// Cancellation unblocks the read loop by closing the connection early.
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-closed:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read room event: %w", err)
		}

		var event RoomEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.WarnContext(ctx, "Skipping undecodable room event", "error", err)
			continue
		}

		onEvent(event)
	}
}

func (w *Watcher) watchEndpoint() (string, error) {
	parsed, err := url.Parse(w.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid registry URL %q: %w", w.baseURL, err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/rooms/watch"

	return parsed.String(), nil
}
