package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosight/gosight/summarizer/internal/session"
)

var pushCmd = &cobra.Command{
	Use:   "push [session-id] [recording.json]",
	Short: "Append a recording to the Redis store for the session worker",
	Args:  cobra.ExactArgs(2),
	RunE:  runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	events, err := readEvents(args[1], downsample)
	if err != nil {
		return err
	}

	store := session.NewRecordingStore(cfg.Redis)
	defer store.Close()

	if err := store.Append(cmd.Context(), args[0], events); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pushed %d events to session %s\n", len(events), args[0])
	return nil
}
