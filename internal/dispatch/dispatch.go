// Package dispatch periodically sweeps the event store, computes
// reminder fire times, and hands due reminders to a Notifier. The
// delivery transport itself (email, push, SMS) is an external
// collaborator behind the Notifier interface.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "calsched/internal/log"
	"calsched/internal/model"
	"calsched/internal/reminder"
)

// Notifier delivers a single due reminder. Implementations own retries
// and transport concerns; the dispatcher only guarantees each due
// reminder is handed over once.
type Notifier interface {
	Deliver(ctx context.Context, ev model.Event, f reminder.Fire) error
}

// LogNotifier writes deliveries to the application log. It is the
// default stand-in used by the demo binary.
type LogNotifier struct{}

func (LogNotifier) Deliver(_ context.Context, ev model.Event, f reminder.Fire) error {
	appLog.Info("reminder due",
		"event_id", ev.ID,
		"title", ev.Title,
		"kind", f.Kind,
		"at", f.At.Format(time.RFC3339),
	)
	return nil
}

// EventSource is the slice of the store the dispatcher needs.
type EventSource interface {
	List() []model.Event
}

// Dispatcher runs the reminder sweep on a cron schedule.
type Dispatcher struct {
	source   EventSource
	notifier Notifier
	cron     *cron.Cron

	mu   sync.Mutex
	seen map[string]struct{}

	// now is swappable for tests.
	now func() time.Time
}

// New builds a Dispatcher sweeping on the given cron spec (standard
// five-field syntax, e.g. "* * * * *").
func New(source EventSource, notifier Notifier, spec string) (*Dispatcher, error) {
	d := &Dispatcher{
		source:   source,
		notifier: notifier,
		cron:     cron.New(),
		seen:     make(map[string]struct{}),
		now:      time.Now,
	}
	if _, err := d.cron.AddFunc(spec, func() { d.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("dispatch: bad cron spec %q: %w", spec, err)
	}
	return d, nil
}

// Start begins the cron loop and stops it when ctx is canceled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.cron.Start()
	go func() {
		<-ctx.Done()
		stopped := d.cron.Stop()
		<-stopped.Done()
		appLog.Info("dispatcher stopped")
	}()
}

// Sweep delivers every reminder that is due (fire time at or before
// now) and not yet delivered. Cancelled events never fire. The seen set
// guarantees at-most-once handover per (event, kind, fire time) for the
// lifetime of the process.
func (d *Dispatcher) Sweep(ctx context.Context) {
	now := d.now()

	for _, ev := range d.source.List() {
		if ev.Status == model.StatusCancelled {
			continue
		}
		for _, f := range reminder.FireTimes(ev) {
			if f.At.After(now) {
				continue
			}

			key := ev.ID + "|" + f.Kind + "|" + f.At.Format(time.RFC3339Nano)
			d.mu.Lock()
			_, done := d.seen[key]
			if !done {
				d.seen[key] = struct{}{}
			}
			d.mu.Unlock()
			if done {
				continue
			}

			if err := d.notifier.Deliver(ctx, ev, f); err != nil {
				appLog.Error("reminder delivery failed", err, "event_id", ev.ID, "kind", f.Kind)
			}
		}
	}
}
