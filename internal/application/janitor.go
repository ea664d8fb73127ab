package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrJanitorBusy is returned when a cleaning cycle is already running
var ErrJanitorBusy = errors.New("cleaning is in progress")

// JanitorTask is one maintenance step run on each cycle
type JanitorTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// Janitor runs maintenance tasks on a cron schedule
type Janitor struct {
	schedule string
	tasks    []JanitorTask
	log      *logrus.Entry

	mu       sync.Mutex
	cleaning bool
	cron     *cron.Cron
}

// NewJanitor creates a janitor for the given cron schedule
func NewJanitor(schedule string, tasks []JanitorTask, log *logrus.Entry) *Janitor {
	return &Janitor{
		schedule: schedule,
		tasks:    tasks,
		log:      log.WithField("component", "janitor"),
		cron:     cron.New(),
	}
}

// Start schedules the cleaning cycle
func (j *Janitor) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.RunNow(ctx); err != nil && !errors.Is(err, ErrJanitorBusy) {
			j.log.WithError(err).Warn("cleaning cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.log.WithField("schedule", j.schedule).Debug("janitor scheduled")
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// RunNow runs one cleaning cycle synchronously. Every task runs even if an
// earlier one fails; the errors are joined.
func (j *Janitor) RunNow(ctx context.Context) error {
	j.mu.Lock()
	if j.cleaning {
		j.mu.Unlock()
		return ErrJanitorBusy
	}
	j.cleaning = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.cleaning = false
		j.mu.Unlock()
	}()

	var errs []error
	for _, task := range j.tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task.Run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", task.Name, err))
		}
	}
	return errors.Join(errs...)
}
