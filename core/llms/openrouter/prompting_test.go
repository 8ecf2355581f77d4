package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freightsim/callsim-core/core/llms"
)

func TestPromptStreamsContent(t *testing.T) {
	var gotRequest *http.Request
	var gotBody requestBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(context.Background())
		decodeRequestBody(t, r, &gotBody)

		writeChunks(w,
			": OPENROUTER PROCESSING",
			contentChunk("Hey, "),
			contentChunk("got a load for you."),
			"[DONE]",
		)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	streamed := strings.Builder{}
	responses, err := client.Prompt(context.Background(), "Start the call.",
		llms.WithSystemPrompt("You are a dispatcher."),
		llms.WithStream(func(chunk string) { streamed.WriteString(chunk) }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(responses) != 1 || responses[0].Content != "Hey, got a load for you." {
		t.Fatalf("unexpected responses: %+v", responses)
	}
	if streamed.String() != "Hey, got a load for you." {
		t.Fatalf("stream callback saw %q", streamed.String())
	}

	if got := gotRequest.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", got)
	}
	if gotRequest.Header.Get("HTTP-Referer") == "" || gotRequest.Header.Get("X-Title") == "" {
		t.Fatal("missing OpenRouter attribution headers")
	}

	if !gotBody.Stream {
		t.Fatal("request should ask for a streamed response")
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %+v", gotBody.Messages)
	}
	if gotBody.Messages[0].Role != messageRoleSystem || gotBody.Messages[0].Content != "You are a dispatcher." {
		t.Fatalf("unexpected system message: %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != messageRoleUser || gotBody.Messages[1].Content != "Start the call." {
		t.Fatalf("unexpected user message: %+v", gotBody.Messages[1])
	}
}

func TestPromptExecutesToolCallsAndContinues(t *testing.T) {
	requests := []requestBody{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body requestBody
		decodeRequestBody(t, r, &body)
		requests = append(requests, body)

		if len(requests) == 1 {
			writeChunks(w,
				toolCallChunk("call-1", "end_conversation", `{"reason":"wrapped up"}`),
				"[DONE]",
			)
			return
		}
		writeChunks(w, contentChunk("All set."), "[DONE]")
	}))
	defer server.Close()

	executedWith := ""
	tool := llms.NewTool(
		"end_conversation",
		"End the call.",
		map[string]llms.ParameterBase{"reason": {Type: "string"}},
		func(params struct {
			Reason string `json:"reason"`
		}) (string, error) {
			executedWith = params.Reason
			return "call ended", nil
		},
	)

	client := NewClient("test-key", WithBaseURL(server.URL))
	responses, err := client.Prompt(context.Background(), "Wrap it up.", llms.WithTools(tool))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if executedWith != "wrapped up" {
		t.Fatalf("tool executed with %q", executedWith)
	}

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if len(responses[0].ToolCalls) != 1 || responses[0].ToolCalls[0].Name != "end_conversation" {
		t.Fatalf("unexpected tool calls: %+v", responses[0].ToolCalls)
	}
	if responses[0].ToolCalls[0].Response != "call ended" {
		t.Fatalf("tool response not recorded: %+v", responses[0].ToolCalls[0])
	}
	if responses[1].Content != "All set." {
		t.Fatalf("unexpected final response: %+v", responses[1])
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if choice := requests[0].ToolChoice; choice == nil || *choice != "auto" {
		t.Fatalf("expected auto tool choice, got %v", choice)
	}

	second := requests[1].Messages
	last := second[len(second)-1]
	if last.Role != messageRoleTool || last.Content != "call ended" || last.ToolCallID != "call-1" {
		t.Fatalf("tool response message not forwarded: %+v", last)
	}
	assistant := second[len(second)-2]
	if assistant.Role != messageRoleAssistant || len(assistant.ToolCalls) != 1 {
		t.Fatalf("assistant tool-call message not forwarded: %+v", assistant)
	}
}

func TestPromptForcedToolChoice(t *testing.T) {
	var gotBody requestBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodeRequestBody(t, r, &gotBody)
		writeChunks(w, contentChunk("ok"), "[DONE]")
	}))
	defer server.Close()

	tool := llms.NewTool("noop", "Does nothing.", map[string]llms.ParameterBase{},
		func(struct{}) (string, error) { return "", nil })

	client := NewClient("test-key", WithBaseURL(server.URL))
	if _, err := client.Prompt(context.Background(), "go", llms.WithForcedTools(tool)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody.ToolChoice == nil || *gotBody.ToolChoice != "required" {
		t.Fatalf("expected required tool choice, got %v", gotBody.ToolChoice)
	}
}

func TestPromptTemperatureOverridesClientDefault(t *testing.T) {
	var gotBody requestBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodeRequestBody(t, r, &gotBody)
		writeChunks(w, contentChunk("ok"), "[DONE]")
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithTemperature(0.2))

	if _, err := client.Prompt(context.Background(), "hello", llms.WithTemperature(0.7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.7 {
		t.Fatalf("per-prompt temperature not applied: %v", gotBody.Temperature)
	}

	if _, err := client.Prompt(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.2 {
		t.Fatalf("client default temperature lost: %v", gotBody.Temperature)
	}
}

func TestPromptNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	if _, err := client.Prompt(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error for a non-OK status")
	}
}

func TestPromptSkipsMalformedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeChunks(w,
			"{malformed",
			contentChunk("still fine"),
			"[DONE]",
		)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	responses, err := client.Prompt(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 1 || responses[0].Content != "still fine" {
		t.Fatalf("unexpected responses: %+v", responses)
	}
}

func decodeRequestBody(t *testing.T, r *http.Request, out *requestBody) {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read request body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
}

func writeChunks(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, chunk := range chunks {
		if strings.HasPrefix(chunk, ":") {
			fmt.Fprintf(w, "%s\n\n", chunk)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", chunk)
	}
}

func contentChunk(content string) string {
	chunk, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]any{"content": content}},
		},
	})
	return string(chunk)
}

func toolCallChunk(id string, name string, arguments string) string {
	chunk, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]any{"tool_calls": []map[string]any{
				{
					"id":   id,
					"type": "function",
					"function": map[string]any{
						"name":      name,
						"arguments": arguments,
					},
				},
			}}},
		},
	})
	return string(chunk)
}
