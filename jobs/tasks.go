package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan flags repair orders past their estimated completion.
	TaskOverdueScan = "repairs:overdue_scan"
	// TaskLowStockScan flags parts at or below their reorder point.
	TaskLowStockScan = "parts:lowstock_scan"
	// TaskLiftMaintenanceScan flags lifts past their scheduled service date.
	TaskLiftMaintenanceScan = "lifts:maintenance_scan"
)

// NewOverdueScanTask constructs the overdue repair order scan task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueScan, nil)
}

// NewLowStockScanTask constructs the low stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// NewLiftMaintenanceScanTask constructs the lift maintenance scan task.
func NewLiftMaintenanceScanTask() *asynq.Task {
	return asynq.NewTask(TaskLiftMaintenanceScan, nil)
}
