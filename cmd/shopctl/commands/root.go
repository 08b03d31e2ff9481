package commands

import (
	"github.com/spf13/cobra"
)

var (
	redisAddr string
	apiBase   string
)

// Execute runs the shopctl root command.
func Execute() error {
	root := &cobra.Command{
		Use:          "shopctl",
		Short:        "Operational helpers for the shop dashboard",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&redisAddr, "redis", "127.0.0.1:6379", "redis address for queue operations")
	root.PersistentFlags().StringVar(&apiBase, "api", "http://127.0.0.1:8080", "base URL of the running API server")

	root.AddCommand(scanCmd(), queueCmd(), cacheCmd(), kpiCmd())
	return root.Execute()
}
