package workers

import "time"

// Worker фоновая задача с собственным расписанием
type Worker interface {
	Schedule() string
	Ready(now time.Time) bool
	Execute()
}
