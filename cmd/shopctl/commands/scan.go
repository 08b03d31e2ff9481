package commands

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/liftboard/liftboard/jobs"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "scan [overdue|low-stock|lift-maintenance]",
		Short:     "Enqueue a shop scan immediately instead of waiting for its schedule",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"overdue", "low-stock", "lift-maintenance"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var task *asynq.Task
			switch args[0] {
			case "overdue":
				task = jobs.NewOverdueScanTask()
			case "low-stock":
				task = jobs.NewLowStockScanTask()
			case "lift-maintenance":
				task = jobs.NewLiftMaintenanceScanTask()
			default:
				return fmt.Errorf("unknown scan %q", args[0])
			}

			client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := client.Enqueue(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Printf("enqueued %s (id %s)\n", info.Type, info.ID)
			return nil
		},
	}
	return cmd
}
