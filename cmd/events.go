/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkpress/blogapi/config"
	"github.com/inkpress/blogapi/internal/mq"
	"github.com/inkpress/blogapi/internal/server"
	"github.com/inkpress/blogapi/types"
	"github.com/spf13/cobra"
)

var watchType string

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect blog events on the configured message bus",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Subscribe to the event channel and log every event",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg.LogLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := server.NewEventBackend(ctx, cfg)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		bus := mq.New(backend)
		defer bus.Close()

		logger.Info().Str("backend", cfg.MQBackend).Str("channel", cfg.MQChannel).Msg("watching events")
		err = bus.Subscribe(ctx, cfg.MQChannel, func(ctx context.Context, msg mq.Message) error {
			if watchType != "" && msg.Type() != watchType {
				return nil
			}
			var event types.Event
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logger.Warn().Err(err).Str("message_id", msg.ID).Msg("undecodable event")
				return nil
			}
			entry := logger.Info().
				Str("message_id", msg.ID).
				Str("type", event.Type).
				Time("occurred_at", event.OccurredAt)
			if event.BlogID != 0 {
				entry = entry.Int("blog_id", event.BlogID)
			}
			if event.User != nil {
				entry = entry.Int64("user_id", event.User.ID).Str("username", event.User.Username)
			}
			entry.Msg("event")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)

	eventsWatchCmd.Flags().StringVar(&watchType, "type", "", "only log events of this type, e.g. blog.created")
}
