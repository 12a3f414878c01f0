// services/scheduler.go
package services

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartResolveScheduler re-resolves the registry on a fixed interval
// whenever the catalog has moved on. Shut the returned scheduler down on exit.
func (s *UnlockService) StartResolveScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if s.ResolveIfStale() {
				s.log.Infof("[Scheduler] catalog changed, unlock targets re-resolved")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule resolve job: %w", err)
	}

	sched.Start()
	return sched, nil
}
