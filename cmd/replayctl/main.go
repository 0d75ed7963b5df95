// Command replayctl processes and summarizes session recordings from the
// command line.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/preprocessor"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

var (
	configPath string
	verbose    bool
	downsample bool
)

var rootCmd = &cobra.Command{
	Use:   "replayctl",
	Short: "Process and summarize session replay recordings",
	Long: `replayctl runs the session preprocessor and summarizer on recording files
(JSON arrays of replay events) and pushes recordings into the worker's Redis store.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&downsample, "downsample", false, "thin out mouse, scroll and resize events first")

	rootCmd.AddCommand(processCmd, downsampleCmd, summarizeCmd, multiCmd, pushCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/summarizer.yaml"
}

// loadConfig reads the configuration file, falling back to defaults when it
// does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", configPath).Msg("No configuration file, using defaults")
		def := config.Default()
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	return cfg, nil
}

// readEvents loads a recording file, downsampled when thin is set.
func readEvents(path string, thin bool) ([]rrweb.Event, error) {
	events, err := rrweb.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if thin {
		before := len(events)
		events = preprocessor.NewDownsampler().Downsample(events)
		log.Info().Int("before", before).Int("after", len(events)).Msg("Downsampled recording")
	}
	return events, nil
}
