// Command palmactl is the operator tool for a Palma Lending deployment:
// it issues access tokens and publishes oracle rounds.
package main

import (
	"os"

	"palma-lending/config"
	"palma-lending/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const configKey = "config"

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "palmactl",
		Short:        "Operator tool for Palma Lending",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(configKey, "", "Config file (defaults to ./config.yaml, PLM_ env vars override)")
	root.AddCommand(tokenCommand(), oracleCommand())
	return root
}

func loadConfig(c *cobra.Command) (*config.Config, error) {
	path, err := c.Flags().GetString(configKey)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// cliLogger writes to stderr so command output stays machine readable.
func cliLogger(cfg *config.Config) zerolog.Logger {
	return logger.NewWithWriter(cfg.Log.Level, zerolog.ConsoleWriter{Out: os.Stderr})
}
