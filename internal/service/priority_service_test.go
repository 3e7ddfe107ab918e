package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/notify"
	"activity-planner/internal/repository"
)

type countingPresenter struct {
	got []notify.Notification
}

func (c *countingPresenter) Present(_ context.Context, n notify.Notification) {
	c.got = append(c.got, n)
}

func seed(t *testing.T, repo *repository.TaskRepository, title string, due time.Duration, prio model.Priority) model.Task {
	t.Helper()
	task := &model.Task{
		Title:     title,
		StartTime: testNow.Add(-48 * time.Hour),
		Deadline:  testNow.Add(due),
		Priority:  prio,
	}
	if err := repo.Insert(context.Background(), task); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return *task
}

func TestCandidatesExcludeCompletedAndPast(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)
	ctx := context.Background()

	open := seed(t, repo, "open", 30*time.Hour, model.PriorityLow)
	seed(t, repo, "overdue", -time.Hour, model.PriorityLow)
	done := seed(t, repo, "done", 30*time.Hour, model.PriorityLow)
	if err := repo.SetCompleted(ctx, done.ID, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}

	svc := NewPriorityService(repo, newFakeReminders(), nil, discardLogger()).WithClock(func() time.Time { return testNow })
	got, err := svc.Candidates(ctx)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != open.ID {
		t.Errorf("Expected only the open future task, got %+v", got)
	}
}

func TestUpdatePrioritiesPersistsAndReschedules(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)
	ctx := context.Background()

	soon := seed(t, repo, "soon", 30*time.Hour, model.PriorityLow)
	mid := seed(t, repo, "mid", 4*24*time.Hour, model.PriorityMedium)
	far := seed(t, repo, "far", 10*24*time.Hour, model.PriorityHigh)

	reminders := newFakeReminders()
	presenter := &countingPresenter{}
	svc := NewPriorityService(repo, reminders, presenter, discardLogger()).WithClock(func() time.Time { return testNow })

	if !svc.UpdatePriorities(ctx, []model.Task{soon, mid, far}) {
		t.Fatal("Expected a change to be reported")
	}

	for id, want := range map[uint]model.Priority{soon.ID: model.PriorityHigh, mid.ID: model.PriorityMedium, far.ID: model.PriorityLow} {
		got, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Priority != want {
			t.Errorf("Task %d: expected %s, got %s", id, want, got.Priority)
		}
	}
	if reminders.cancels != 2 || reminders.schedules != 2 {
		t.Errorf("Expected 2 cancels and 2 schedules, got %d and %d", reminders.cancels, reminders.schedules)
	}
	if !reminders.isArmed(soon.ID) || reminders.isArmed(mid.ID) {
		t.Error("Expected only changed tasks to be rescheduled")
	}
	if len(presenter.got) != 2 {
		t.Errorf("Expected 2 change notifications, got %d", len(presenter.got))
	}
}

func TestRunPeriodicCheckIsIdempotent(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)
	ctx := context.Background()

	seed(t, repo, "a", 30*time.Hour, model.PriorityLow)
	seed(t, repo, "b", 8*24*time.Hour, model.PriorityMedium)

	reminders := newFakeReminders()
	svc := NewPriorityService(repo, reminders, nil, discardLogger()).WithClock(func() time.Time { return testNow })

	checked, changed, err := svc.RunPeriodicCheck(ctx)
	if err != nil {
		t.Fatalf("RunPeriodicCheck failed: %v", err)
	}
	if checked != 2 || !changed {
		t.Errorf("Expected 2 checked and a change, got %d and %v", checked, changed)
	}
	writes := reminders.schedules

	_, changed, err = svc.RunPeriodicCheck(ctx)
	if err != nil {
		t.Fatalf("RunPeriodicCheck failed: %v", err)
	}
	if changed {
		t.Error("Expected second run to change nothing")
	}
	if reminders.schedules != writes {
		t.Errorf("Expected no further reschedules, got %d more", reminders.schedules-writes)
	}
}

func TestUpdateTaskSkipsFailedWrite(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)

	ghost := model.Task{ID: 999, Title: "ghost", Deadline: testNow.Add(30 * time.Hour), Priority: model.PriorityLow}
	reminders := newFakeReminders()
	svc := NewPriorityService(repo, reminders, nil, discardLogger()).WithClock(func() time.Time { return testNow })

	if svc.UpdateTask(context.Background(), ghost) {
		t.Error("Expected a failed write to report no change")
	}
	if reminders.schedules != 0 || reminders.cancels != 0 {
		t.Error("Expected reminders untouched after a failed write")
	}
}

func TestPastDeadlineExcludedButStillHigh(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)
	ctx := context.Background()

	overdue := seed(t, repo, "overdue", -time.Hour, model.PriorityLow)
	svc := NewPriorityService(repo, newFakeReminders(), nil, discardLogger()).WithClock(func() time.Time { return testNow })

	if _, changed, _ := svc.RunPeriodicCheck(ctx); changed {
		t.Error("Expected the overdue task to be left alone by the batch check")
	}
	got, _ := repo.GetByID(ctx, overdue.ID)
	if got.Priority != model.PriorityLow {
		t.Errorf("Expected stored priority Low, got %s", got.Priority)
	}
	if !svc.UpdateTask(ctx, *got) {
		t.Error("Expected a direct update to promote the overdue task")
	}
}

func TestUpdatePrioritiesKeepsEditMadeAfterRead(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)
	ctx := context.Background()

	seed(t, repo, "a", 30*time.Hour, model.PriorityLow)
	reminders := newFakeReminders()
	presenter := &countingPresenter{}
	svc := NewPriorityService(repo, reminders, presenter, discardLogger()).WithClock(func() time.Time { return testNow })

	cands, err := svc.Candidates(ctx)
	if err != nil || len(cands) != 1 {
		t.Fatalf("Candidates: expected 1 task, got %d (%v)", len(cands), err)
	}

	edited := cands[0]
	edited.Title = "edited"
	edited.Deadline = testNow.Add(10 * 24 * time.Hour)
	edited.Priority = model.PriorityHigh
	if err := repo.Update(ctx, &edited); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if svc.UpdatePriorities(ctx, cands) {
		t.Error("Expected the stale snapshot to be skipped")
	}
	got, err := repo.GetByID(ctx, edited.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "edited" || !got.Deadline.Equal(edited.Deadline) || got.Priority != model.PriorityHigh {
		t.Errorf("Expected the edit to survive, got %q due %v (%s)", got.Title, got.Deadline, got.Priority)
	}
	if reminders.schedules != 0 || len(presenter.got) != 0 {
		t.Errorf("Expected no reschedule and no notification, got %d and %d", reminders.schedules, len(presenter.got))
	}
}

func TestUpdateTaskReschedulesFromStoredRow(t *testing.T) {
	t.Parallel()
	repo := newTaskRepo(t)
	ctx := context.Background()

	task := seed(t, repo, "report", 30*time.Hour, model.PriorityLow)
	stale := task
	stale.Title = "stale title"

	reminders := newFakeReminders()
	presenter := &countingPresenter{}
	svc := NewPriorityService(repo, reminders, presenter, discardLogger()).WithClock(func() time.Time { return testNow })

	if !svc.UpdateTask(ctx, stale) {
		t.Fatal("Expected the priority to change")
	}
	if armed := reminders.armed[task.ID]; armed.Title != "report" || armed.Priority != model.PriorityHigh {
		t.Errorf("Expected reminders built from the stored row, got %q (%s)", armed.Title, armed.Priority)
	}
	if len(presenter.got) != 1 || presenter.got[0].ID != fmt.Sprintf("task-%d/priority-check", task.ID) {
		t.Errorf("Expected one notification in the priority-check slot, got %+v", presenter.got)
	}
}
