package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/repository"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTaskRepo(t *testing.T) *repository.TaskRepository {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "planner.db"), discardLogger())
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewTaskRepository(db)
}

// fakeReminders tracks which tasks currently have reminders armed.
type fakeReminders struct {
	mu        sync.Mutex
	armed     map[uint]model.Task
	schedules int
	cancels   int
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{armed: make(map[uint]model.Task)}
}

func (f *fakeReminders) Schedule(task model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules++
	f.armed[task.ID] = task
}

func (f *fakeReminders) Cancel(taskID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	delete(f.armed, taskID)
}

func (f *fakeReminders) isArmed(taskID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.armed[taskID]
	return ok
}
