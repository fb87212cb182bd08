package ports

import "time"

type SchedulerService interface {
	Start()
	Stop()
	ScheduleTaskOnce(delay time.Duration, task func()) error
	ScheduleTaskRepeating(interval time.Duration, task func()) error
}
