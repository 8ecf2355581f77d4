package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Room is a call room listed by the registry.
type Room struct {
	Name     string `json:"name"`
	Metadata string `json:"metadata,omitempty"`
}

// Participant is a member of a room, exposed for introspection only.
type Participant struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	State    string `json:"state,omitempty"`
}

// RegistryClient talks to the external room registry.
type RegistryClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type RegistryOption func(*RegistryClient)

// WithRegistryAPIKey sets the bearer token sent with every request.
func WithRegistryAPIKey(apiKey string) RegistryOption {
	return func(c *RegistryClient) {
		c.apiKey = apiKey
	}
}

// WithRegistryHTTPClient overrides the underlying HTTP client.
func WithRegistryHTTPClient(httpClient *http.Client) RegistryOption {
	return func(c *RegistryClient) {
		c.httpClient = httpClient
	}
}

func NewRegistryClient(baseURL string, opts ...RegistryOption) *RegistryClient {
	c := &RegistryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreateRoom registers a room carrying the call's metadata blob.
func (c *RegistryClient) CreateRoom(ctx context.Context, name string, metadata string) (*Room, error) {
	ctx, span := tracer.Start(ctx, "create room")
	defer span.End()
	span.SetAttributes(attribute.String("room.name", name))

	var room Room
	if err := c.do(ctx, http.MethodPost, "/rooms", Room{Name: name, Metadata: metadata}, &room); err != nil {
		err = fmt.Errorf("failed to create room %q: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &room, nil
}

// ListRooms returns every room currently known to the registry, metadata
// included. A room that was just created may not be listed yet.
func (c *RegistryClient) ListRooms(ctx context.Context) ([]Room, error) {
	ctx, span := tracer.Start(ctx, "list rooms")
	defer span.End()

	var rooms []Room
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &rooms); err != nil {
		err = fmt.Errorf("failed to list rooms: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("rooms.count", len(rooms)))
	return rooms, nil
}

// DeleteRoom removes a room. Deleting an already-removed room is not an
// error.
func (c *RegistryClient) DeleteRoom(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "delete room")
	defer span.End()
	span.SetAttributes(attribute.String("room.name", name))

	if err := c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(name), nil, nil); err != nil {
		err = fmt.Errorf("failed to delete room %q: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// ListParticipants returns the current members of a room.
func (c *RegistryClient) ListParticipants(ctx context.Context, room string) ([]Participant, error) {
	ctx, span := tracer.Start(ctx, "list participants")
	defer span.End()
	span.SetAttributes(attribute.String("room.name", room))

	var participants []Participant
	if err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(room)+"/participants", nil, &participants); err != nil {
		err = fmt.Errorf("failed to list participants of room %q: %w", room, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return participants, nil
}

func (c *RegistryClient) do(ctx context.Context, method string, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshalling JSON: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WarnContext(ctx, "Error closing response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodDelete {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response body: %w", err)
	}
	return nil
}
