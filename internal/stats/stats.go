package stats

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/routinely-backend/internal/types"
)

// Package stats is the read-side projection over a (routine, tasks, progress)
// snapshot. Everything here is pure: callers fetch the snapshot, stats only
// derives numbers from it. Metrics are computed on read, never stored, so the
// ledger and its aggregates cannot drift apart.

type RoutineStats struct {
	TotalTasks           int `json:"total_tasks"`
	DaysPassed           int `json:"days_passed"`
	DaysRemaining        int `json:"days_remaining"`
	DaysFollowed         int `json:"days_followed"`
	TotalProgressEntries int `json:"total_progress_entries"`
	ProgressPercentage   int `json:"progress_percentage"`
}

// ProgressMark is one completed day for a task. Completed is always true:
// absence of a mark is what "missed" looks like, it is never materialized.
type ProgressMark struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

type TaskBreakdown struct {
	TaskID        uuid.UUID      `json:"task_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Priority      string         `json:"priority"`
	TotalProgress int            `json:"total_progress"`
	Progress      []ProgressMark `json:"progress"`
}

// TruncateDay normalizes an instant to midnight server time.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Window returns the inclusive [start, end] date window of a routine:
// start is createdAt truncated to day, end is start + durationInDays - 1.
func Window(createdAt time.Time, durationInDays int) (time.Time, time.Time) {
	start := TruncateDay(createdAt)
	end := start.AddDate(0, 0, durationInDays-1)
	return start, end
}

// InWindow reports whether day lies within the routine's date window.
func InWindow(routine *types.Routine, day time.Time) bool {
	start, end := Window(routine.CreatedAt, routine.DurationInDays)
	return !day.Before(start) && !day.After(end)
}

// Compute derives the scalar metrics for one routine snapshot. today must
// already be day-truncated.
func Compute(routine *types.Routine, tasks []*types.Task, events []*types.Progress, today time.Time) RoutineStats {
	start, _ := Window(routine.CreatedAt, routine.DurationInDays)

	daysPassed := 0
	if !today.Before(start) {
		daysPassed = daysBetween(start, today) + 1
		if daysPassed > routine.DurationInDays {
			daysPassed = routine.DurationInDays
		}
	}

	daysRemaining := routine.DurationInDays - daysPassed
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		seen[dayKey(e.Date)] = struct{}{}
	}

	totalTasks := len(tasks)
	totalEntries := len(events)

	percentage := 0
	if totalTasks > 0 && routine.DurationInDays > 0 {
		max := float64(totalTasks * routine.DurationInDays)
		percentage = int(math.Round(float64(totalEntries) / max * 100))
	}

	return RoutineStats{
		TotalTasks:           totalTasks,
		DaysPassed:           daysPassed,
		DaysRemaining:        daysRemaining,
		DaysFollowed:         len(seen),
		TotalProgressEntries: totalEntries,
		ProgressPercentage:   percentage,
	}
}

// ComputeDetail derives the scalar metrics plus the per-task breakdown used
// by the active routine view.
func ComputeDetail(routine *types.Routine, tasks []*types.Task, events []*types.Progress, today time.Time) (RoutineStats, []TaskBreakdown) {
	summary := Compute(routine, tasks, events, today)

	byTask := make(map[uuid.UUID][]*types.Progress, len(tasks))
	for _, e := range events {
		byTask[e.TaskID] = append(byTask[e.TaskID], e)
	}

	breakdown := make([]TaskBreakdown, 0, len(tasks))
	for _, task := range tasks {
		rows := byTask[task.ID]
		marks := make([]ProgressMark, 0, len(rows))
		for _, row := range rows {
			marks = append(marks, ProgressMark{Date: row.Date, Completed: true})
		}
		breakdown = append(breakdown, TaskBreakdown{
			TaskID:        task.ID,
			Title:         task.Title,
			Description:   task.Description,
			Priority:      task.Priority,
			TotalProgress: len(rows),
			Progress:      marks,
		})
	}
	return summary, breakdown
}

// daysBetween counts whole calendar days from a to b. Rounding absorbs DST
// offsets between the two midnights.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
