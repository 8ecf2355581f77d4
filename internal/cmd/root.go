package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "callsim-worker",
	Short: "Two-agent simulated call worker",
	Long: `callsim-worker runs simulated dispatcher/driver phone calls. It can
execute a single call from attached metadata, or watch a room registry and
run one call per created room.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("openrouter-api-key", "", "OpenRouter API key")
	rootCmd.PersistentFlags().String("model", "", "chat model identifier (default openai/gpt-4o-mini)")
	rootCmd.PersistentFlags().String("registry-url", "", "room registry base URL")
	rootCmd.PersistentFlags().String("registry-api-key", "", "room registry API key")
	rootCmd.PersistentFlags().Duration("turn-pacing", 0, "pause between turns (default 2s)")
	rootCmd.PersistentFlags().Duration("safety-ceiling", 0, "hard bound on conversation duration (default 10m)")
	rootCmd.PersistentFlags().Int("max-turns", 0, "hard bound on recorded turns (default 20)")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.SetConfigName("callsim")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/callsim")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CALLSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	_ = viper.ReadInConfig()
}
