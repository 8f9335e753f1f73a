// Command apiscenario runs YAML acceptance scenarios against an HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/apiscenario/cmd/apiscenario/config"
	"github.com/loykin/apiscenario/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfig reads the --config file (or APISCENARIO_CONFIG). The default
// path is optional; an explicitly chosen one must exist.
func loadConfig(cmd *cobra.Command) (*config.ConfigDoc, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetDefault("config", constants.DefaultConfigPath)
	_ = v.BindEnv("config")
	f := cmd.Flags().Lookup("config")
	if f != nil {
		_ = v.BindPFlag("config", f)
	}
	_, fromEnv := os.LookupEnv(constants.EnvPrefix + "_CONFIG")
	optional := !fromEnv && (f == nil || !f.Changed)

	doc, err := config.Load(v.GetString("config"), optional)
	if err != nil {
		return nil, err
	}
	if err := doc.SetupLogging(); err != nil {
		return nil, err
	}
	return doc, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "apiscenario",
		Short:         "Run HTTP acceptance scenarios defined in YAML feature files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", constants.DefaultConfigPath, "path to the config yaml")
	root.AddCommand(newRunCmd(), newValidateCmd(), newStepsCmd(), newHistoryCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
