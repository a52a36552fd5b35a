package ports

// SchedulerService runs tasks once the chain tip reaches a given height.
type SchedulerService interface {
	Start()
	Stop()
	// AddNow returns the height reached after delta more blocks.
	AddNow(delta int64) (int64, error)
	AfterNow(height int64) bool
	ScheduleTaskOnce(at int64, task func()) error
}
