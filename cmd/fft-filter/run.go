package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/drakos74/fft-filter/infra/config"
	filter "github.com/drakos74/fft-filter/internal"
	"github.com/drakos74/fft-filter/internal/algo/fft"
	"github.com/drakos74/fft-filter/internal/algo/processor"
	"github.com/drakos74/fft-filter/internal/api"
	"github.com/drakos74/fft-filter/internal/metrics"
	"github.com/drakos74/fft-filter/internal/server"
	"github.com/drakos74/fft-filter/internal/storage"
	"github.com/drakos74/fft-filter/internal/storage/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the filter over a stream of readings",
	Long: `Reads json line readings from the input, runs them through the fft filter
and writes the result to the output. Use '-' for stdin and stdout.

If a config file is used, it is watched and any change of the filter section
reconfigures the running filter. The filter can also be reconfigured over http
with POST /api/config when the server address is set.`,
	RunE: run,
}

func init() {
	runCmd.Flags().StringP("input", "i", "-", "input file with json line readings")
	runCmd.Flags().StringP("output", "o", "-", "output file for the json line readings, 'void' discards them")
	runCmd.Flags().String("addr", "", "address for the http server, e.g. ':6090' (disabled if empty)")
	runCmd.Flags().Int("batch", processor.DefaultBatch, "max number of readings ingested together")
	runCmd.Flags().Int("limit", 0, "stop after the given number of readings (0 for no limit)")
	runCmd.Flags().Bool("debug", false, "log every http request")
}

// bindFlags binds the run flags to viper, so that flags take precedence over env and file.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for key, flag := range map[string]string{
		"input":       "input",
		"output":      "output",
		"server.addr": "addr",
		"batch":       "batch",
		"limit":       "limit",
		"debug":       "debug",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("could not bind flag '%s': %w", flag, err)
		}
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	v, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := bindFlags(cmd, v); err != nil {
		return err
	}

	f, err := fft.New(cfg)
	if err != nil {
		return err
	}

	source, err := file.OpenSource(v.GetString("input"))
	if err != nil {
		return err
	}
	var sink api.Sink
	if output := v.GetString("output"); output == storage.Void {
		sink = storage.NewVoidSink()
	} else {
		sink, err = file.CreateSink(output)
		if err != nil {
			if cErr := source.Close(); cErr != nil {
				log.Error().Err(cErr).Msg("could not close source")
			}
			return err
		}
	}

	ctx, cnl := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cnl()

	if v.ConfigFileUsed() != "" {
		config.Watch(v, config.Section, func(items map[string]string) {
			if _, err := f.Reconfigure(items); err != nil {
				log.Error().Err(err).Msg("could not apply config change")
			}
		}, fft.Keys...)
	}

	if addr := v.GetString("server.addr"); addr != "" {
		srv := server.NewServer("fft-filter", addr).
			Add(server.Live()).
			Add(server.FilterRoutes(f, v.GetBool("debug"))...).
			Mount(metrics.Path, metrics.Handler())
		if v.GetBool("debug") {
			srv.Debug()
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("server stopped")
			}
		}()
	}

	engine := filter.NewEngine(source, sink).
		AddProcessor(processor.FFT(f, v.GetInt("batch")))
	if limit := v.GetInt("limit"); limit > 0 {
		engine.WithStop(api.Counter(limit))
	}

	log.Info().Str("config", f.Config().String()).Msg("starting filter")
	return engine.Run(ctx)
}
