package reminder

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Timers is a keyed one-shot timer facility.
type Timers interface {
	// Register arms a timer for key, replacing any earlier one. A fireAt
	// that is not in the future disarms key and registers nothing.
	Register(key Key, fireAt time.Time, payload Payload)
	// Cancel disarms key. Unknown keys are ignored.
	Cancel(key Key)
}

// FireFunc receives a timer when it goes off.
type FireFunc func(key Key, payload Payload)

// once is a cron.Schedule that yields a single activation.
type once struct {
	at time.Time
}

func (o once) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

type cronEntry struct {
	id    cron.EntryID
	token uint64
}

// CronTimers implements Timers on top of a robfig/cron scheduler.
type CronTimers struct {
	cron   *cron.Cron
	fire   FireFunc
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	entries map[Key]cronEntry
	seq     uint64
}

// NewCronTimers creates a facility that calls fire on its own goroutine
// whenever a registered timer elapses.
func NewCronTimers(loc *time.Location, fire FireFunc, logger *slog.Logger) *CronTimers {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CronTimers{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))),
		),
		fire:    fire,
		now:     time.Now,
		logger:  logger,
		entries: make(map[Key]cronEntry),
	}
}

func (t *CronTimers) Start() {
	t.cron.Start()
}

// Stop halts the scheduler and waits for running callbacks.
func (t *CronTimers) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

func (t *CronTimers) Register(key Key, fireAt time.Time, payload Payload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(key)
	if !fireAt.After(t.now()) {
		return
	}

	t.seq++
	token := t.seq
	id := t.cron.Schedule(once{at: fireAt}, cron.FuncJob(func() {
		if !t.release(key, token) {
			return
		}
		t.fire(key, payload)
	}))
	t.entries[key] = cronEntry{id: id, token: token}
	t.logger.Debug("timer registered", slog.String("key", key.String()), slog.Time("fire_at", fireAt))
}

func (t *CronTimers) Cancel(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(key)
}

// Pending lists armed keys, sorted by task then kind.
func (t *CronTimers) Pending() []Key {
	t.mu.Lock()
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	t.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TaskID != keys[j].TaskID {
			return keys[i].TaskID < keys[j].TaskID
		}
		return keys[i].Kind < keys[j].Kind
	})
	return keys
}

// release drops the entry for key if it still belongs to the firing job.
// A job whose registration was replaced or cancelled reports false.
func (t *CronTimers) release(key Key, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok || e.token != token {
		return false
	}
	t.cron.Remove(e.id)
	delete(t.entries, key)
	return true
}

func (t *CronTimers) removeLocked(key Key) {
	if e, ok := t.entries[key]; ok {
		t.cron.Remove(e.id)
		delete(t.entries, key)
	}
}
