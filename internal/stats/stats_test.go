package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/routinely-backend/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func routineOn(created time.Time, duration int) *types.Routine {
	return &types.Routine{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Name:           "morning",
		DurationInDays: duration,
		CreatedAt:      created.Add(9 * time.Hour), // created mid-morning, start date is midnight
	}
}

func taskFor(r *types.Routine, title string) *types.Task {
	return &types.Task{ID: uuid.New(), UserID: r.UserID, RoutineID: r.ID, Title: title, Priority: types.TaskPriorityMedium}
}

func eventOn(r *types.Routine, task *types.Task, date time.Time) *types.Progress {
	return &types.Progress{ID: uuid.New(), UserID: r.UserID, RoutineID: r.ID, TaskID: task.ID, Date: date}
}

func TestWindow_InclusiveEnds(t *testing.T) {
	start, end := Window(day(2026, time.March, 10).Add(15*time.Hour), 3)
	if !start.Equal(day(2026, time.March, 10)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(day(2026, time.March, 12)) {
		t.Fatalf("unexpected end: %v", end)
	}
}

func TestInWindow_BoundaryDays(t *testing.T) {
	r := routineOn(day(2026, time.March, 10), 3)
	cases := []struct {
		day  time.Time
		want bool
	}{
		{day(2026, time.March, 9), false},
		{day(2026, time.March, 10), true},
		{day(2026, time.March, 12), true},
		{day(2026, time.March, 13), false},
	}
	for _, tc := range cases {
		if got := InWindow(r, tc.day); got != tc.want {
			t.Fatalf("InWindow(%v) = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestCompute_DaysPassedProgression(t *testing.T) {
	r := routineOn(day(2026, time.March, 10), 5)
	cases := []struct {
		today     time.Time
		passed    int
		remaining int
	}{
		{day(2026, time.March, 9), 0, 5},  // day before start
		{day(2026, time.March, 10), 1, 4}, // start day
		{day(2026, time.March, 12), 3, 2},
		{day(2026, time.March, 14), 5, 0}, // end day
		{day(2026, time.April, 1), 5, 0},  // long after; capped at duration
	}
	for _, tc := range cases {
		got := Compute(r, nil, nil, tc.today)
		if got.DaysPassed != tc.passed || got.DaysRemaining != tc.remaining {
			t.Fatalf("today=%v: passed=%d remaining=%d, want %d/%d",
				tc.today, got.DaysPassed, got.DaysRemaining, tc.passed, tc.remaining)
		}
	}
}

func TestCompute_ScenarioTwoTasksFiveDays(t *testing.T) {
	// Routine created on D, duration 5, 2 tasks; task A done on D, D+1, D+2.
	d := day(2026, time.March, 10)
	r := routineOn(d, 5)
	a := taskFor(r, "stretch")
	b := taskFor(r, "read")
	events := []*types.Progress{
		eventOn(r, a, d),
		eventOn(r, a, d.AddDate(0, 0, 1)),
		eventOn(r, a, d.AddDate(0, 0, 2)),
	}

	got := Compute(r, []*types.Task{a, b}, events, d.AddDate(0, 0, 2))
	if got.DaysFollowed != 3 {
		t.Fatalf("daysFollowed = %d, want 3", got.DaysFollowed)
	}
	if got.TotalProgressEntries != 3 {
		t.Fatalf("totalProgressEntries = %d, want 3", got.TotalProgressEntries)
	}
	if got.ProgressPercentage != 30 {
		t.Fatalf("progressPercentage = %d, want 30", got.ProgressPercentage)
	}
}

func TestCompute_DaysFollowedCountsDistinctDates(t *testing.T) {
	d := day(2026, time.March, 10)
	r := routineOn(d, 7)
	a := taskFor(r, "stretch")
	b := taskFor(r, "read")
	// Two tasks on the same day count that day once.
	events := []*types.Progress{
		eventOn(r, a, d),
		eventOn(r, b, d),
		eventOn(r, a, d.AddDate(0, 0, 1)),
	}

	got := Compute(r, []*types.Task{a, b}, events, d.AddDate(0, 0, 1))
	if got.DaysFollowed != 2 {
		t.Fatalf("daysFollowed = %d, want 2", got.DaysFollowed)
	}
	if got.TotalProgressEntries != 3 {
		t.Fatalf("totalProgressEntries = %d, want 3", got.TotalProgressEntries)
	}
}

func TestCompute_PercentageBounds(t *testing.T) {
	d := day(2026, time.March, 10)
	r := routineOn(d, 2)
	a := taskFor(r, "stretch")

	// Full ledger: every task every day.
	events := []*types.Progress{
		eventOn(r, a, d),
		eventOn(r, a, d.AddDate(0, 0, 1)),
	}
	got := Compute(r, []*types.Task{a}, events, d.AddDate(0, 0, 1))
	if got.ProgressPercentage != 100 {
		t.Fatalf("full ledger percentage = %d, want 100", got.ProgressPercentage)
	}

	// Empty ledger.
	got = Compute(r, []*types.Task{a}, nil, d)
	if got.ProgressPercentage != 0 {
		t.Fatalf("empty ledger percentage = %d, want 0", got.ProgressPercentage)
	}

	// No tasks: defined as zero, not a division by zero.
	got = Compute(r, nil, nil, d)
	if got.ProgressPercentage != 0 {
		t.Fatalf("no-task percentage = %d, want 0", got.ProgressPercentage)
	}
}

func TestCompute_PercentageRoundsHalfUp(t *testing.T) {
	d := day(2026, time.March, 10)
	r := routineOn(d, 4)
	a := taskFor(r, "stretch")
	b := taskFor(r, "read")
	// 1 entry of a possible 8 -> 12.5 -> 13.
	events := []*types.Progress{eventOn(r, a, d)}

	got := Compute(r, []*types.Task{a, b}, events, d)
	if got.ProgressPercentage != 13 {
		t.Fatalf("progressPercentage = %d, want 13", got.ProgressPercentage)
	}
}

func TestComputeDetail_PerTaskBreakdown(t *testing.T) {
	d := day(2026, time.March, 10)
	r := routineOn(d, 5)
	a := taskFor(r, "stretch")
	b := taskFor(r, "read")
	events := []*types.Progress{
		eventOn(r, a, d),
		eventOn(r, a, d.AddDate(0, 0, 1)),
		eventOn(r, b, d),
	}

	_, breakdown := ComputeDetail(r, []*types.Task{a, b}, events, d.AddDate(0, 0, 1))
	if len(breakdown) != 2 {
		t.Fatalf("breakdown size = %d, want 2", len(breakdown))
	}
	if breakdown[0].TaskID != a.ID || breakdown[0].TotalProgress != 2 {
		t.Fatalf("unexpected first task breakdown: %+v", breakdown[0])
	}
	if breakdown[1].TaskID != b.ID || breakdown[1].TotalProgress != 1 {
		t.Fatalf("unexpected second task breakdown: %+v", breakdown[1])
	}
	for _, tb := range breakdown {
		for _, mark := range tb.Progress {
			if !mark.Completed {
				t.Fatalf("progress mark not completed: %+v", mark)
			}
		}
	}
}

func TestComputeDetail_TaskWithoutEventsHasEmptyProgress(t *testing.T) {
	d := day(2026, time.March, 10)
	r := routineOn(d, 5)
	a := taskFor(r, "stretch")

	_, breakdown := ComputeDetail(r, []*types.Task{a}, nil, d)
	if len(breakdown) != 1 {
		t.Fatalf("breakdown size = %d, want 1", len(breakdown))
	}
	if breakdown[0].TotalProgress != 0 || len(breakdown[0].Progress) != 0 {
		t.Fatalf("expected empty progress, got %+v", breakdown[0])
	}
}

func TestTruncateDay(t *testing.T) {
	in := time.Date(2026, time.March, 10, 23, 59, 59, 999, time.UTC)
	if got := TruncateDay(in); !got.Equal(day(2026, time.March, 10)) {
		t.Fatalf("TruncateDay = %v", got)
	}
}
