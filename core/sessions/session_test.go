package sessions

import (
	"context"
	"fmt"
	"testing"

	"github.com/freightsim/callsim-core/core/llms"
)

func TestRoleOther(t *testing.T) {
	if RoleDispatcher.Other() != RoleDriver {
		t.Fatal("dispatcher's counterpart should be the driver")
	}
	if RoleDriver.Other() != RoleDispatcher {
		t.Fatal("driver's counterpart should be the dispatcher")
	}
}

func TestRolesOrder(t *testing.T) {
	roles := Roles()
	if len(roles) != 2 || roles[0] != RoleDispatcher {
		t.Fatalf("dispatcher should come first: %v", roles)
	}
}

func TestGenerateReplyPassesInstructionsAndTools(t *testing.T) {
	tool := llms.NewTool("noop", "Does nothing.", map[string]llms.ParameterBase{},
		func(struct{}) (string, error) { return "", nil })

	prompter := &fakePrompter{responses: []llms.Response{{Content: "Morning!"}}}
	session := NewLLMSession(RoleDriver, prompter, WithSessionTools(tool))

	reply, err := session.GenerateReply(context.Background(), "You are a driver.", "Continue the call.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Morning!" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if prompter.prompt != "Continue the call." {
		t.Fatalf("prompt not forwarded: %q", prompter.prompt)
	}
	if prompter.options.Instructions != "You are a driver." {
		t.Fatalf("instructions not forwarded: %q", prompter.options.Instructions)
	}
	if len(prompter.options.Tools) != 1 || prompter.options.Tools[0].Function.Name != "noop" {
		t.Fatalf("tools not forwarded: %+v", prompter.options.Tools)
	}
}

func TestGenerateReplyConcatenatesAndTrims(t *testing.T) {
	prompter := &fakePrompter{responses: []llms.Response{
		{Content: ""},
		{Content: "  All set, see you Thursday. "},
	}}
	session := NewLLMSession(RoleDispatcher, prompter)

	reply, err := session.GenerateReply(context.Background(), "instructions", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "All set, see you Thursday." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestGenerateReplyWithoutLLM(t *testing.T) {
	session := NewLLMSession(RoleDriver, nil)

	if _, err := session.GenerateReply(context.Background(), "instructions", "prompt"); err == nil {
		t.Fatal("expected an error without an LLM")
	}
}

func TestGenerateReplyWrapsErrors(t *testing.T) {
	prompter := &fakePrompter{err: fmt.Errorf("rate limited")}
	session := NewLLMSession(RoleDriver, prompter)

	if _, err := session.GenerateReply(context.Background(), "instructions", "prompt"); err == nil {
		t.Fatal("expected the prompt error to propagate")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	closes := 0
	session := NewLLMSession(RoleDriver, &fakePrompter{},
		WithCloseFunc(func(ctx context.Context) error {
			closes++
			return nil
		}),
	)

	if err := session.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := session.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
	if closes != 1 {
		t.Fatalf("transport closed %d times", closes)
	}
}

func TestCloseWithoutTransport(t *testing.T) {
	session := NewLLMSession(RoleDriver, &fakePrompter{})
	if err := session.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStartSessionTunesTemperaturePerRole(t *testing.T) {
	prompter := &fakePrompter{responses: []llms.Response{{Content: "ok"}}}
	factory := NewFactory(prompter)

	temperatures := map[Role]float64{}
	for _, role := range Roles() {
		session, err := factory.StartSession(context.Background(), role, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := session.GenerateReply(context.Background(), "instructions", "prompt"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prompter.options.Temperature == nil {
			t.Fatalf("%s session did not set a temperature", role)
		}
		temperatures[role] = *prompter.options.Temperature
	}

	if temperatures[RoleDispatcher] != 0.8 || temperatures[RoleDriver] != 0.7 {
		t.Fatalf("unexpected role temperatures: %+v", temperatures)
	}
	if temperatures[RoleDispatcher] == temperatures[RoleDriver] {
		t.Fatal("both roles sample at the same temperature")
	}
}

func TestWithTemperatureOverridesRoleDefault(t *testing.T) {
	prompter := &fakePrompter{responses: []llms.Response{{Content: "ok"}}}
	factory := NewFactory(prompter, WithTemperature(0.3))

	session, err := factory.StartSession(context.Background(), RoleDispatcher, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.GenerateReply(context.Background(), "instructions", "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prompter.options.Temperature == nil || *prompter.options.Temperature != 0.3 {
		t.Fatalf("factory temperature override lost: %v", prompter.options.Temperature)
	}
}

func TestStartSessionAppliesFactoryOptions(t *testing.T) {
	prompter := &fakePrompter{responses: []llms.Response{{Content: "ok"}}}
	factory := NewFactory(prompter)

	tool := llms.NewTool("noop", "Does nothing.", map[string]llms.ParameterBase{},
		func(struct{}) (string, error) { return "", nil })

	session, err := factory.StartSession(context.Background(), RoleDispatcher, "Sam", []llms.Tool{tool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Role() != RoleDispatcher {
		t.Fatalf("unexpected role: %s", session.Role())
	}
	if session.SpeakerLabel() != "Sam" {
		t.Fatalf("unexpected label: %q", session.SpeakerLabel())
	}

	if _, err := session.GenerateReply(context.Background(), "instructions", "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompter.options.Tools) != 1 {
		t.Fatalf("factory tools not forwarded: %+v", prompter.options.Tools)
	}
}

type fakePrompter struct {
	responses []llms.Response
	err       error

	prompt  string
	options llms.PromptOptions
}

func (p *fakePrompter) Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) ([]llms.Response, error) {
	p.prompt = prompt
	p.options = llms.PromptOptions{}
	for _, opt := range opts {
		opt(&p.options)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.responses, nil
}
