package orchestration

import (
	"github.com/freightsim/callsim-core/core/rooms"
	"github.com/freightsim/callsim-core/core/sessions"
)

const defaultDispatcherPrompt = `You are a freight dispatcher calling one of your drivers about a load assignment.
You are professional but friendly, and you know the load details well. Confirm the driver
can take the load, walk through pickup and delivery, and answer any questions they have
about rate, equipment, or timing. Wrap up once everything is confirmed.`

const defaultDriverPrompt = `You are a truck driver taking a call from your dispatcher about a load assignment.
You are practical and direct. Ask about anything that affects your day: pickup window,
delivery deadline, rate, weight, and equipment. Push back if something does not work for
you, and confirm once you are satisfied with the details.`

func defaultPrompt(role sessions.Role) string {
	if role == sessions.RoleDriver {
		return defaultDriverPrompt
	}
	return defaultDispatcherPrompt
}

// callConfig is the resolved per-call configuration: scenario text plus one
// agent config per role, with defaults filled in wherever metadata was
// missing or degraded.
type callConfig struct {
	scenarioText string
	agents       map[sessions.Role]rooms.AgentConfig
}

func newCallConfig(metadata rooms.RoomMetadata) callConfig {
	cfg := callConfig{
		agents: map[sessions.Role]rooms.AgentConfig{
			sessions.RoleDispatcher: normalizeAgent(sessions.RoleDispatcher, metadata.DispatcherAgent),
			sessions.RoleDriver:     normalizeAgent(sessions.RoleDriver, metadata.DriverAgent),
		},
	}
	if metadata.Scenario != nil {
		cfg.scenarioText = rooms.FormatScenario(metadata.Scenario)
	}
	return cfg
}

func normalizeAgent(role sessions.Role, agent rooms.AgentConfig) rooms.AgentConfig {
	if agent.Role == "" {
		agent.Role = role.DefaultSpeakerLabel()
	}
	if agent.Prompt == "" {
		agent.Prompt = defaultPrompt(role)
	}
	return agent
}

func (c callConfig) agent(role sessions.Role) rooms.AgentConfig {
	return c.agents[role]
}

func (c callConfig) label(role sessions.Role) string {
	return c.agents[role].Role
}
