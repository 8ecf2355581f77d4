package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/freightsim/callsim-core/core/llms"
	"github.com/freightsim/callsim-core/internal/utils"
	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	endMessage  = "[DONE]"
	chunkPrefix = "data:"
)

// Prompt sends a prompt to the chat-completions endpoint and returns the
// generated responses. Tool calls requested by the model are executed and the
// exchange continues until the model produces a plain response.
func (c *Client) Prompt(
	ctx context.Context,
	prompt string,
	opts ...llms.PromptOption,
) ([]llms.Response, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	messages := toMessages(options.Instructions, options.Turns)
	messages = append(messages, message{
		Role:    messageRoleUser,
		Content: prompt,
	})

	var toolChoice *string
	if options.Tools != nil {
		toolChoice = utils.Ptr("auto")
		if options.ForcedToolsCall {
			toolChoice = utils.Ptr("required")
		}
	}

	temperature := c.temperature
	if options.Temperature != nil {
		temperature = options.Temperature
	}

	responses := []llms.Response{}

	for {
		reqBody := requestBody{
			Model:       c.model,
			Messages:    messages,
			Stream:      true,
			Temperature: temperature,
			ToolChoice:  toolChoice,
			Tools:       toTools(options.Tools),
		}

		response, toolCalls, err := c.streamCompletion(ctx, reqBody, options.Stream)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		messages = append(messages, message{
			Role:      messageRoleAssistant,
			Content:   response,
			ToolCalls: toolCalls,
		})

		resp := llms.Response{Content: response}
		for _, tCall := range toolCalls {
			resp.ToolCalls = append(resp.ToolCalls, llms.ToolCall{
				ID:        tCall.ID,
				Name:      tCall.Function.Name,
				Arguments: tCall.Function.Arguments,
			})
		}
		responses = append(responses, resp)

		if len(toolCalls) == 0 {
			llmResponses := []llms.Response{}
			copier.Copy(&llmResponses, responses)
			return llmResponses, nil
		}

		for _, tCall := range toolCalls {
			for _, tool := range options.Tools {
				if tool.Function.Name != tCall.Function.Name {
					continue
				}

				toolResponse, err := tool.Execute(tCall.Function.Arguments)
				if err != nil {
					err = fmt.Errorf("failed to execute tool %q: %w", tCall.Function.Name, err)
					span.RecordError(err)
					logger.WarnContext(ctx, "Tool execution failed", "tool", tCall.Function.Name, "error", err)
				}
				messages = append(messages, message{
					ToolCallID: tCall.ID,
					Role:       messageRoleTool,
					Content:    toolResponse,
				})
				if len(responses) > 0 {
					last := &responses[len(responses)-1]
					for i := range last.ToolCalls {
						if last.ToolCalls[i].ID == tCall.ID {
							last.ToolCalls[i].Response = toolResponse
						}
					}
				}
			}
		}
	}
}

func (c *Client) streamCompletion(
	ctx context.Context,
	reqBody requestBody,
	onChunk func(string),
) (string, []toolCall, error) {
	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", refererHeader)
	req.Header.Set("X-Title", titleHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WarnContext(ctx, "Error closing response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	toolCalls := []toolCall{}
	var response strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		chunk := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), chunkPrefix))

		if len(chunk) == 0 || strings.HasPrefix(chunk, ":") {
			// OpenRouter interleaves ": OPENROUTER PROCESSING" comments.
			continue
		}

		if chunk == endMessage {
			break
		}

		var responseBody streamingResponseBody
		if err := json.Unmarshal([]byte(chunk), &responseBody); err != nil {
			logger.WarnContext(ctx, "Error unmarshalling JSON chunk", "error", err)
			continue
		}
		if len(responseBody.Choices) == 0 {
			continue
		}
		if len(responseBody.Choices[0].Delta.ToolCalls) > 0 {
			toolCalls = append(toolCalls, responseBody.Choices[0].Delta.ToolCalls...)
		}

		content := responseBody.Choices[0].Delta.Content
		response.WriteString(content)
		if onChunk != nil && content != "" {
			onChunk(content)
		}
	}

	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("error reading streamed response: %w", err)
	}

	return response.String(), toolCalls, nil
}
