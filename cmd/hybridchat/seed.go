package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	kbfiles "github.com/kailas-cloud/hybridchat/internal/repository/knowledge/files"
	kbredis "github.com/kailas-cloud/hybridchat/internal/repository/knowledge/redis"
)

func newSeedCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the Redis knowledge records with the contents of a data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if dir == "" {
				dir = cfg.Knowledge.Dir
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("seed requires database.addrs")
			}
			defer store.Close()

			records, err := kbfiles.New(dir, logger).Load(ctx)
			if err != nil {
				return err
			}
			n, err := kbredis.New(store, cfg.Knowledge.KeyPrefix).Replace(ctx, records)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			logger.Info("Knowledge seeded", zap.String("dir", dir), zap.Int("records", n))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records from %s\n", n, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "data directory (defaults to knowledge.dir)")
	return cmd
}
