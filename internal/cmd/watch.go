package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	orchestration "github.com/freightsim/callsim-core/core"
	"github.com/freightsim/callsim-core/core/rooms"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the room registry and run one call per created room",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWorkerConfig()
		if err != nil {
			return err
		}
		if cfg.registryURL == "" {
			return fmt.Errorf("watch requires a room registry (flag --registry-url or CALLSIM_REGISTRY_URL)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watcher := rooms.NewWatcher(cfg.registryURL, rooms.WithRegistryAPIKey(cfg.registryAPIKey))

		var calls sync.WaitGroup
		err = watcher.Watch(ctx, func(event rooms.RoomEvent) {
			if event.Type != rooms.RoomEventCreated {
				return
			}

			calls.Add(1)
			go func(room rooms.Room) {
				defer calls.Done()

				outcome, err := cfg.runCall(ctx, room.Name, room.Metadata, orchestration.WithRoom(room))
				if err != nil {
					fmt.Fprintf(os.Stderr, "call %s failed: %v\n", room.Name, err)
					return
				}
				fmt.Fprintf(os.Stderr, "call %s finished: phase=%s turns=%d\n", room.Name, outcome.Phase, outcome.Turns)
			}(event.Room)
		})
		calls.Wait()

		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
