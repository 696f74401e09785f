package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AhmedIzaan/ai-interview-coach/internal/config"
	"github.com/AhmedIzaan/ai-interview-coach/internal/events"
)

func newEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published interview events",
	}
	cmd.AddCommand(newEventsTailCommand())
	return cmd
}

func newEventsTailCommand() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the session and answer topics",
		Long: `Follow the session and answer topics on the brokers in KAFKA_BROKERS
and print one line per event until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return events.Tail(ctx, events.TailConfig{
				Brokers: cfg.Kafka.Brokers,
				Topics:  []string{cfg.Kafka.TopicSessions, cfg.Kafka.TopicAnswers},
				Since:   since,
			}, func(ev events.Event) {
				printEvent(out, ev)
			})
		},
	}
	cmd.Flags().DurationVar(&since, "since", time.Hour, "Replay events newer than this before following; 0 follows new events only")
	return cmd
}

func printEvent(w io.Writer, ev events.Event) {
	fmt.Fprintf(w, "%s  %-20s %-28s %s  %s\n",
		ev.Time.Format(time.RFC3339), ev.Topic, ev.Type, ev.Key, ev.Payload)
}
