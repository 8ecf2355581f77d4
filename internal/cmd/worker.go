package cmd

import (
	"context"
	"fmt"
	"time"

	orchestration "github.com/freightsim/callsim-core/core"
	"github.com/freightsim/callsim-core/core/llms"
	"github.com/freightsim/callsim-core/core/llms/openrouter"
	"github.com/freightsim/callsim-core/core/rooms"
	"github.com/freightsim/callsim-core/core/sessions"
	"github.com/spf13/viper"
)

type workerConfig struct {
	openRouterAPIKey string
	model            string
	registryURL      string
	registryAPIKey   string
	turnPacing       time.Duration
	safetyCeiling    time.Duration
	maxTurns         int
}

func loadWorkerConfig() (workerConfig, error) {
	cfg := workerConfig{
		openRouterAPIKey: viper.GetString("openrouter-api-key"),
		model:            viper.GetString("model"),
		registryURL:      viper.GetString("registry-url"),
		registryAPIKey:   viper.GetString("registry-api-key"),
		turnPacing:       viper.GetDuration("turn-pacing"),
		safetyCeiling:    viper.GetDuration("safety-ceiling"),
		maxTurns:         viper.GetInt("max-turns"),
	}

	if cfg.openRouterAPIKey == "" {
		return cfg, fmt.Errorf("an OpenRouter API key is required (flag --openrouter-api-key or CALLSIM_OPENROUTER_API_KEY)")
	}
	return cfg, nil
}

func (cfg workerConfig) registryClient() *rooms.RegistryClient {
	if cfg.registryURL == "" {
		return nil
	}
	return rooms.NewRegistryClient(cfg.registryURL, rooms.WithRegistryAPIKey(cfg.registryAPIKey))
}

// runCall executes one simulated call end to end and returns its outcome.
func (cfg workerConfig) runCall(ctx context.Context, callID string, attachedMetadata string, extraOpts ...orchestration.SchedulerOption) (orchestration.Outcome, error) {
	clientOpts := []openrouter.ClientOption{}
	if cfg.model != "" {
		clientOpts = append(clientOpts, openrouter.WithModel(cfg.model))
	}
	client := openrouter.NewClient(cfg.openRouterAPIKey, clientOpts...)
	factory := sessions.NewFactory(client)

	schedulerOpts := []orchestration.SchedulerOption{
		orchestration.WithSessionFactory(orchestration.SessionFactoryFunc(
			func(ctx context.Context, role sessions.Role, label string, tools []llms.Tool) (orchestration.Session, error) {
				return factory.StartSession(ctx, role, label, tools)
			},
		)),
	}
	if registry := cfg.registryClient(); registry != nil {
		schedulerOpts = append(schedulerOpts,
			orchestration.WithMetadataResolver(rooms.NewResolver(registry)),
			orchestration.WithParticipantLister(registry),
		)
	}
	if cfg.turnPacing > 0 {
		schedulerOpts = append(schedulerOpts, orchestration.WithTurnPacing(cfg.turnPacing))
	}
	if cfg.safetyCeiling > 0 {
		schedulerOpts = append(schedulerOpts, orchestration.WithSafetyCeiling(cfg.safetyCeiling))
	}
	if cfg.maxTurns > 0 {
		schedulerOpts = append(schedulerOpts, orchestration.WithMaxTurns(cfg.maxTurns))
	}
	schedulerOpts = append(schedulerOpts, extraOpts...)

	state := orchestration.NewCallState(callID)
	scheduler := orchestration.NewScheduler(state, schedulerOpts...)
	return scheduler.Run(ctx, attachedMetadata)
}
