package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/notify"
	"activity-planner/internal/repository"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type registration struct {
	fireAt  time.Time
	payload Payload
}

// fakeTimers records registrations instead of arming real timers.
type fakeTimers struct {
	mu      sync.Mutex
	pending map[Key]registration
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{pending: make(map[Key]registration)}
}

func (f *fakeTimers) Register(key Key, fireAt time.Time, payload Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[key] = registration{fireAt: fireAt, payload: payload}
}

func (f *fakeTimers) Cancel(key Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, key)
}

func (f *fakeTimers) get(key Key) (registration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.pending[key]
	return r, ok
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// memStore is an in-memory task store.
type memStore struct {
	tasks     map[uint]model.Task
	updates   int
	updateErr error
	// afterGet runs once after the next GetByID, standing in for a
	// concurrent writer.
	afterGet func(s *memStore)
}

func newMemStore(tasks ...model.Task) *memStore {
	s := &memStore{tasks: make(map[uint]model.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id uint) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if hook := s.afterGet; hook != nil {
		s.afterGet = nil
		hook(s)
	}
	return &t, nil
}

func (s *memStore) UpdatePriority(_ context.Context, id uint, old, next model.Priority) (bool, error) {
	if s.updateErr != nil {
		return false, s.updateErr
	}
	t, ok := s.tasks[id]
	if !ok || t.Priority != old {
		return false, nil
	}
	s.updates++
	t.Priority = next
	s.tasks[id] = t
	return true, nil
}

func (s *memStore) GetAll(_ context.Context) ([]model.Task, error) {
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type failingLister struct{}

func (failingLister) GetAll(context.Context) ([]model.Task, error) {
	return nil, errors.New("disk on fire")
}

type recordingPresenter struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingPresenter) Present(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingPresenter) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.got...)
}
