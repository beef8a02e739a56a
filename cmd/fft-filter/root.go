package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/drakos74/fft-filter/infra/config"
	"github.com/drakos74/fft-filter/internal/algo/fft"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string
	logLevel   string
	console    bool
)

var rootCmd = &cobra.Command{
	Use:   "fft-filter",
	Short: "Streaming FFT filter for sensor readings",
	Long: `Buffers the datapoints of one asset per channel and replaces every full window
with a summary of its frequency bands. Readings of all other assets pass through unchanged.

Readings are consumed and emitted as json lines.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(logLevel, console)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		fmt.Sprintf("config file (default is %s.yaml in $HOME/.config/%s, /etc/%s or the working dir)", config.Name, config.Name, config.Name))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&console, "console", false,
		"human readable log output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// initLogging sets up the global logger, logs always go to stderr as stdout might carry the readings.
func initLogging(level string, console bool) error {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("could not parse log level '%s': %w", level, err)
	}
	zerolog.SetGlobalLevel(l)
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

// loadConfig reads the viper config and applies the filter items on top of the defaults.
func loadConfig() (*viper.Viper, fft.Config, error) {
	v, err := config.New(configFile, map[string]interface{}{
		"input":       "-",
		"output":      "-",
		"server.addr": "",
		"batch":       100,
		"limit":       0,
	})
	if err != nil {
		return nil, fft.Config{}, err
	}
	items := config.Items(v, config.Section, fft.Keys...)
	return v, fft.DefaultConfig().Apply(items), nil
}
