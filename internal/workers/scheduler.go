// Package workers
package workers

import (
	"context"
	"sync"
	"time"

	"browserperf/internal/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	log logger.Logger
}

func NewScheduler(log logger.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Task is a running periodic worker.
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	once sync.Once
	err  error
}

// Stop halts the schedule and waits for a run in progress to return. It
// reports the error that ended the task early, if any.
func (t *Task) Stop() error {
	t.once.Do(t.cancel)
	<-t.done
	return t.err
}

// Done is closed once the task loop has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// RunByDuration calls worker.Run every dur, one run at a time. A tick that
// fires while a run is in progress is held (at most one) and later ticks are
// dropped. Runs get a context that is not canceled by Stop, so a run in
// progress always completes. The first error from Run ends the task.
func (s *Scheduler) RunByDuration(ctx context.Context, dur time.Duration, worker Worker) *Task {
	runCtx, cancel := context.WithCancel(ctx)

	t := &Task{
		name:   worker.Name(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(dur)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				s.log.Debug("worker stopped", "name", t.name)
				return
			case <-ticker.C:
				// A tick held during the last run can race with Stop.
				if runCtx.Err() != nil {
					s.log.Debug("worker stopped", "name", t.name)
					return
				}

				start := time.Now()

				if err := worker.Run(context.WithoutCancel(runCtx)); err != nil {
					s.log.Error("worker failed", "name", t.name, "error", err)
					t.err = err
					return
				}

				s.log.Debug("worker finished", "name", t.name, "time", time.Since(start))
			}
		}
	}()

	return t
}
