package commands

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/liftboard/liftboard/jobs"
)

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show background queue statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
			defer func() { _ = inspector.Close() }()

			info, err := inspector.GetQueueInfo(jobs.QueueDefault)
			if err != nil {
				return err
			}
			fmt.Printf("queue:     %s\n", info.Queue)
			fmt.Printf("pending:   %d\n", info.Pending)
			fmt.Printf("active:    %d\n", info.Active)
			fmt.Printf("scheduled: %d\n", info.Scheduled)
			fmt.Printf("retry:     %d\n", info.Retry)
			return nil
		},
	}
	return cmd
}
