// Package runtime supervises the background workers of the process. It owns
// no business logic; it only keeps workers alive.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

var errWorkerPanic = fmt.Errorf("worker panic")

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// workerName uses reflection to name a worker for logs, avoiding a manual
// naming method on the interface.
func workerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Supervisor runs each worker in a goroutine, recovers panics, restarts
// crashed workers, and drains everything on shutdown via its WaitGroup.
type Supervisor struct {
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *slog.Logger
	workers []Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(workers ...Worker) *Supervisor {
	s.workers = append(s.workers, workers...)
	return s
}

// Run starts every registered worker under a cancellation scope tied to the
// parent context and blocks until all of them have stopped.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer s.cancel()

	for _, worker := range s.workers {
		s.start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// start runs one worker under supervision. A panic is recovered and the
// worker restarted after a short delay; a nil return stops it for good. A
// failure in one worker never stops the supervisor itself.
func (s *Supervisor) start(ctx context.Context, worker Worker) {
	s.wg.Add(1)
	name := workerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", name))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished : %s", name))
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}

// Stop cancels all workers and lets Run return once they have drained.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
