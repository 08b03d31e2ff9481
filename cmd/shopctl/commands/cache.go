package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/liftboard/liftboard/internal/analytics"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dashboard cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "bump",
		Short: "Invalidate all cached dashboard aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := redis.NewClient(&redis.Options{Addr: redisAddr})
			defer func() { _ = client.Close() }()

			cache := analytics.NewCache(client, 0)
			if err := cache.Bump(cmd.Context()); err != nil {
				return err
			}
			version, err := cache.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("cache bumped to version %d\n", version)
			return nil
		},
	})
	return cmd
}
