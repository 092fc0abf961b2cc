package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"tasknest/backend/internal/models"
	"tasknest/backend/internal/services"

	"gorm.io/gorm"
)

var ErrAlreadyStarted = errors.New("reminder poller already started")

// Notifier is the delivery hook invoked for each due reminder. Delivery is
// at-least-once: a tick that fails after notifying rolls back its sent
// flags, so the same reminder may be delivered again on a later tick.
type Notifier interface {
	Notify(reminder *models.Reminder)
}

// LogNotifier writes each delivery to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(reminder *models.Reminder) {
	log.Printf("REMINDER TRIGGERED: %s - %s", reminder.Title, reminder.Message)
}

type PollerStats struct {
	Ticks        int64 `json:"ticks"`
	SkippedTicks int64 `json:"skipped_ticks"`
	Delivered    int64 `json:"delivered"`
	Errors       int64 `json:"errors"`
}

// Poller periodically scans the reminder ledger for due, unsent reminders
// and marks them sent. One instance per process; ticks never overlap.
type Poller struct {
	db        *gorm.DB
	reminders services.ReminderService
	notifier  Notifier
	interval  time.Duration

	started atomic.Bool
	running atomic.Bool

	ticks        atomic.Int64
	skippedTicks atomic.Int64
	delivered    atomic.Int64
	tickErrors   atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(db *gorm.DB, reminders services.ReminderService, notifier Notifier, interval time.Duration) *Poller {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Poller{
		db:        db,
		reminders: reminders,
		notifier:  notifier,
		interval:  interval,
	}
}

// Start launches the polling loop. Calling it a second time is rejected.
func (p *Poller) Start() error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx)

	log.Printf("Reminder poller started (interval %s)", p.interval)
	return nil
}

// Stop cancels the loop and waits for any in-flight tick to finish.
func (p *Poller) Stop() {
	if !p.started.Load() {
		return
	}

	p.cancel()
	p.wg.Wait()
	log.Println("Reminder poller stopped")
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunTick()
		}
	}
}

// RunTick performs one due-reminder scan. A tick that would overlap a
// still-running one is skipped, not queued. Errors are logged, never
// propagated; the transaction guarantees a failed tick leaves the ledger
// untouched.
func (p *Poller) RunTick() {
	if !p.running.CompareAndSwap(false, true) {
		p.skippedTicks.Add(1)
		log.Println("Reminder tick still running, skipping this interval")
		return
	}
	defer p.running.Store(false)

	p.ticks.Add(1)

	delivered, err := p.deliverDue(time.Now().UTC())
	if err != nil {
		p.tickErrors.Add(1)
		log.Printf("Error checking reminders: %v", err)
		return
	}

	if delivered > 0 {
		p.delivered.Add(int64(delivered))
		log.Printf("Marked %d reminder(s) as sent", delivered)
	}
}

func (p *Poller) deliverDue(asOf time.Time) (int, error) {
	delivered := 0
	err := p.db.Transaction(func(tx *gorm.DB) error {
		due, err := p.reminders.DueUnsent(tx, asOf)
		if err != nil {
			return err
		}

		for i := range due {
			p.notifier.Notify(&due[i])
			if err := p.reminders.MarkSent(tx, due[i].ID); err != nil {
				return err
			}
			delivered++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return delivered, nil
}

func (p *Poller) Stats() PollerStats {
	return PollerStats{
		Ticks:        p.ticks.Load(),
		SkippedTicks: p.skippedTicks.Load(),
		Delivered:    p.delivered.Load(),
		Errors:       p.tickErrors.Load(),
	}
}
