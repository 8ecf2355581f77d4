package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Run a single simulated call",
	Long: `Run one dispatcher/driver call to completion and print the final
transcript as JSON. Call configuration comes from attached metadata, the room
registry (when --registry-url is set), or built-in defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWorkerConfig()
		if err != nil {
			return err
		}

		callID, _ := cmd.Flags().GetString("call-id")
		metadata, _ := cmd.Flags().GetString("metadata")
		if metadataFile, _ := cmd.Flags().GetString("metadata-file"); metadataFile != "" {
			blob, err := os.ReadFile(metadataFile)
			if err != nil {
				return fmt.Errorf("reading metadata file: %w", err)
			}
			metadata = string(blob)
		}

		outcome, err := cfg.runCall(cmd.Context(), callID, metadata)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(outcome.Transcript); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "call finished: phase=%s turns=%d\n", outcome.Phase, outcome.Turns)
		return nil
	},
}

func init() {
	callCmd.Flags().String("call-id", "", "call identifier (generated when empty)")
	callCmd.Flags().String("metadata", "", "call metadata JSON attached directly")
	callCmd.Flags().String("metadata-file", "", "path to a call metadata JSON file")

	rootCmd.AddCommand(callCmd)
}
