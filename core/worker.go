package core

import "time"

type Worker interface {
	Name() string
	Schedule() string
	Ready(now time.Time) bool
	Execute()
}
