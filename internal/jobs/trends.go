package jobs

import "context"

// Decayer ages the popular-search aggregate.
type Decayer interface {
	Decay(ctx context.Context) error
}

// TrendDecayTask returns the task that decays popular searches on schedule.
func TrendDecayTask(d Decayer, schedule string) Task {
	return Task{
		Name:     "trend-decay",
		Schedule: schedule,
		Run:      d.Decay,
	}
}
