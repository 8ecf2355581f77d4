package rooms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateRoom(t *testing.T) {
	var gotAuth string
	var gotRoom Room

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rooms" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRoom); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(gotRoom)
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL, WithRegistryAPIKey("registry-key"))

	room, err := client.CreateRoom(context.Background(), "call-1", `{"scenario":null}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if room.Name != "call-1" || gotRoom.Metadata != `{"scenario":null}` {
		t.Fatalf("room not round-tripped: %+v / %+v", room, gotRoom)
	}
	if gotAuth != "Bearer registry-key" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
}

func TestListRooms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/rooms" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Room{
			{Name: "call-1", Metadata: "{}"},
			{Name: "call-2"},
		})
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL)

	rooms, err := client.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "call-1" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
}

func TestDeleteRoomToleratesMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL)

	if err := client.DeleteRoom(context.Background(), "call-1"); err != nil {
		t.Fatalf("deleting a missing room should not fail: %v", err)
	}
}

func TestListParticipantsEscapesRoomName(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode([]Participant{{Identity: "agent-dispatcher"}})
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL)

	participants, err := client.ListParticipants(context.Background(), "call/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(participants) != 1 || participants[0].Identity != "agent-dispatcher" {
		t.Fatalf("unexpected participants: %+v", participants)
	}
	if gotPath != "/rooms/call%2F1/participants" {
		t.Fatalf("room name not escaped: %q", gotPath)
	}
}

func TestClientSurfacesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL)

	if _, err := client.ListRooms(context.Background()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
