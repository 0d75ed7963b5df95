package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/gosight/gosight/summarizer/internal/enricher"
	"github.com/gosight/gosight/summarizer/internal/preprocessor"
)

var (
	sessionID string
	indent    bool
)

var processCmd = &cobra.Command{
	Use:   "process [recording.json]",
	Short: "Print the processed session of a recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

var downsampleCmd = &cobra.Command{
	Use:   "downsample [recording.json]",
	Short: "Print a recording with redundant input events removed",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownsample,
}

func init() {
	processCmd.Flags().StringVar(&sessionID, "session-id", "", "session id to seed the metadata with")
	processCmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")
}

func processFile(path string) (*preprocessor.ProcessedSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	events, err := readEvents(path, downsample)
	if err != nil {
		return nil, err
	}

	e := enricher.NewEnricher(cfg.GeoIP.DBPath)
	defer e.Close()

	return preprocessor.New(cfg.Insights).Process(events, preprocessor.Options{
		SessionID: sessionID,
		Enricher:  e,
	})
}

func runProcess(cmd *cobra.Command, args []string) error {
	s, err := processFile(args[0])
	if err != nil {
		return err
	}

	var out []byte
	if indent {
		out, err = json.MarshalIndent(s, "", "  ")
	} else {
		out, err = s.JSON()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runDownsample(cmd *cobra.Command, args []string) error {
	events, err := readEvents(args[0], true)
	if err != nil {
		return err
	}

	out, err := json.Marshal(events)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
