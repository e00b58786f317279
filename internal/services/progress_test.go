package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/routinely-backend/internal/apierr"
	"github.com/yungbote/routinely-backend/internal/types"
)

type progressFixture struct {
	svc      *progressService
	routines *fakeRoutineRepo
	tasks    *fakeTaskRepo
	ledger   *fakeProgressRepo
	userID   uuid.UUID
	routine  *types.Routine
	task     *types.Task
	today    time.Time
}

func newProgressFixture(t *testing.T, routineAge int, duration int) *progressFixture {
	t.Helper()
	today := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	userID := uuid.New()
	routine := &types.Routine{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "morning",
		IsActive:       true,
		DurationInDays: duration,
		CreatedAt:      today.AddDate(0, 0, -routineAge).Add(8 * time.Hour),
	}
	task := &types.Task{
		ID:        uuid.New(),
		UserID:    userID,
		RoutineID: routine.ID,
		Title:     "stretch",
		Priority:  types.TaskPriorityMedium,
	}

	routines := newFakeRoutineRepo()
	routines.routines[routine.ID] = routine
	tasks := newFakeTaskRepo()
	tasks.tasks[task.ID] = task
	ledger := newFakeProgressRepo()

	svc := &progressService{
		log:          newTestLogger(t).With("service", "ProgressService"),
		routineRepo:  routines,
		taskRepo:     tasks,
		progressRepo: ledger,
		now:          func() time.Time { return today.Add(14 * time.Hour) },
	}
	return &progressFixture{
		svc:      svc,
		routines: routines,
		tasks:    tasks,
		ledger:   ledger,
		userID:   userID,
		routine:  routine,
		task:     task,
		today:    today,
	}
}

func TestRecordTaskProgress_Success(t *testing.T) {
	fx := newProgressFixture(t, 2, 7)

	row, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !row.Date.Equal(fx.today) {
		t.Fatalf("event dated %v, want %v", row.Date, fx.today)
	}
	if row.UserID != fx.userID || row.RoutineID != fx.routine.ID || row.TaskID != fx.task.ID {
		t.Fatalf("event carries wrong identity: %+v", row)
	}
	if len(fx.ledger.rows) != 1 {
		t.Fatalf("ledger has %d rows, want 1", len(fx.ledger.rows))
	}
}

func TestRecordTaskProgress_Unauthorized(t *testing.T) {
	fx := newProgressFixture(t, 0, 7)

	_, err := fx.svc.RecordTaskProgress(context.Background(), fx.task.ID)
	if !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRecordTaskProgress_MissingTaskID(t *testing.T) {
	fx := newProgressFixture(t, 0, 7)

	_, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), uuid.Nil)
	if !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordTaskProgress_TaskNotFound(t *testing.T) {
	fx := newProgressFixture(t, 0, 7)

	_, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), uuid.New())
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "Task not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRecordTaskProgress_OtherOwnersTaskIsNotFound(t *testing.T) {
	fx := newProgressFixture(t, 0, 7)

	_, err := fx.svc.RecordTaskProgress(authedCtx(uuid.New()), fx.task.ID)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
}

func TestRecordTaskProgress_RoutineEnded(t *testing.T) {
	// Routine started 10 days ago with a 7 day window; today is past the end.
	fx := newProgressFixture(t, 10, 7)

	_, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID)
	if !apierr.IsCode(err, apierr.CodeOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err.Error() != "Routine has ended or not started yet" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if len(fx.ledger.rows) != 0 {
		t.Fatalf("rejected event must not reach the ledger, found %d rows", len(fx.ledger.rows))
	}
}

func TestRecordTaskProgress_RoutineNotStarted(t *testing.T) {
	fx := newProgressFixture(t, -1, 7) // starts tomorrow

	_, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID)
	if !apierr.IsCode(err, apierr.CodeOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestRecordTaskProgress_LastWindowDayAccepted(t *testing.T) {
	// Day 7 of 7 is still inside the window.
	fx := newProgressFixture(t, 6, 7)

	if _, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID); err != nil {
		t.Fatalf("unexpected error on final window day: %v", err)
	}
}

func TestRecordTaskProgress_DuplicateSameDay(t *testing.T) {
	fx := newProgressFixture(t, 2, 7)

	if _, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID); err != nil {
		t.Fatalf("first event failed: %v", err)
	}
	_, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID)
	if !apierr.IsCode(err, apierr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "Progress for this task already added today" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if len(fx.ledger.rows) != 1 {
		t.Fatalf("duplicate must not append, ledger has %d rows", len(fx.ledger.rows))
	}
}

func TestRecordTaskProgress_UniqueIndexRaceSurfacesConflict(t *testing.T) {
	// Two requests race past ExistsForDay; the loser's insert hits the
	// unique index and must still come back as Conflict.
	fx := newProgressFixture(t, 2, 7)
	fx.ledger.createErr = gorm.ErrDuplicatedKey

	_, err := fx.svc.RecordTaskProgress(authedCtx(fx.userID), fx.task.ID)
	if !apierr.IsCode(err, apierr.CodeConflict) {
		t.Fatalf("expected conflict from index violation, got %v", err)
	}
}
