package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/domain/reply"
	logpkg "github.com/kailas-cloud/hybridchat/internal/logger"
)

func newAskCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and print the event stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			a, err := buildApp(ctx, cfg, store, logger)
			if err != nil {
				if store != nil {
					store.Close()
				}
				return err
			}
			defer a.Close()

			return ask(ctx, a, strings.Join(args, " "), sessionID, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier (generated when empty)")
	return cmd
}

// ask runs one query and writes each event as an SSE frame.
func ask(ctx context.Context, a *app, question, sessionID string, logger *zap.Logger, out io.Writer) error {
	ctx = logpkg.ContextWithLogger(ctx, logger)
	for _, ev := range a.chat.HandleQuery(ctx, question, sessionID) {
		if err := writeFrame(out, ev); err != nil {
			return err
		}
	}
	return nil
}

func writeFrame(out io.Writer, ev reply.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(out, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
