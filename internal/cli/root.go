// Package cli wires the ringqueue command line.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xyhelper/ringqueue/internal/config"
)

// loader resolves the effective settings once flags have been parsed.
type loader func() (*config.Settings, error)

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	v := config.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "ringqueue",
		Short:         "Bounded producer/consumer queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a yaml config file")
	setupFlags(rootCmd, v)

	load := func() (*config.Settings, error) {
		return config.Load(v, cfgFile)
	}
	rootCmd.AddCommand(runCommand(load), configCommand(load))
	return rootCmd
}

// setupFlags defines the persistent flags and binds each one to its viper key.
// Flag defaults match config.SetDefaults.
func setupFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.Int("capacity", 2, "queue capacity in values")
	flags.Int("producers", 1, "number of producer goroutines")
	flags.Int("consumers", 3, "number of consumer goroutines")
	flags.Int("items", 100000, "values to send across all producers")
	flags.Float64("rate", 0, "values per second per producer (0 = unpaced)")
	flags.Int("log-every", 10000, "log every Nth produced and consumed value (0 = never)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")

	bindings := map[string]string{
		"queue.capacity": "capacity",
		"producers":      "producers",
		"consumers":      "consumers",
		"items":          "items",
		"rate":           "rate",
		"log_every":      "log-every",
		"log.level":      "log-level",
		"log.format":     "log-format",
		"metrics.listen": "metrics-addr",
	}
	for key, name := range bindings {
		// only fails for a nil flag, and every name is defined above
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}
