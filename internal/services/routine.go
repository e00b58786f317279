package services

import (
  "context"
  "fmt"
  "strings"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/apierr"
  "github.com/yungbote/routinely-backend/internal/cache"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/repos"
  "github.com/yungbote/routinely-backend/internal/requestdata"
  "github.com/yungbote/routinely-backend/internal/stats"
  "github.com/yungbote/routinely-backend/internal/types"
)

type TaskInput struct {
  Title       string `json:"title"`
  Description string `json:"description"`
  Priority    string `json:"priority"`
}

type CreateRoutineInput struct {
  Name           string      `json:"name"`
  Description    string      `json:"description"`
  DurationInDays int         `json:"duration_in_days"`
  IsActive       *bool       `json:"is_active"`
  Tasks          []TaskInput `json:"tasks"`
}

// RoutineSummary is one routine plus its computed scalar metrics. Metrics
// are derived on read from the ledger snapshot, never stored.
type RoutineSummary struct {
  ID             uuid.UUID `json:"id"`
  Name           string    `json:"name"`
  Description    string    `json:"description,omitempty"`
  IsActive       bool      `json:"is_active"`
  DurationInDays int       `json:"duration_in_days"`
  CreatedAt      time.Time `json:"created_at"`
  stats.RoutineStats
}

type ActiveRoutineDetail struct {
  Routine RoutineSummary        `json:"routine"`
  Tasks   []stats.TaskBreakdown `json:"tasks"`
}

type RoutineService interface {
  CreateWithTasks(ctx context.Context, input CreateRoutineInput) (*types.Routine, []*types.Task, error)
  List(ctx context.Context) ([]RoutineSummary, error)
  GetActive(ctx context.Context) (*ActiveRoutineDetail, error)
  Delete(ctx context.Context, routineID uuid.UUID) error
}

type routineService struct {
  db           *gorm.DB
  log          *logger.Logger
  routineRepo  repos.RoutineRepo
  taskRepo     repos.TaskRepo
  progressRepo repos.ProgressRepo
  statsCache   *cache.Cache
  txFn         func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewRoutineService(
  db *gorm.DB,
  log *logger.Logger,
  routineRepo repos.RoutineRepo,
  taskRepo repos.TaskRepo,
  progressRepo repos.ProgressRepo,
  statsCache *cache.Cache,
) RoutineService {
  serviceLog := log.With("service", "RoutineService")
  rs := &routineService{
    db:           db,
    log:          serviceLog,
    routineRepo:  routineRepo,
    taskRepo:     taskRepo,
    progressRepo: progressRepo,
    statsCache:   statsCache,
  }
  rs.txFn = func(ctx context.Context, fn func(tx *gorm.DB) error) error {
    return rs.db.WithContext(ctx).Transaction(fn)
  }
  return rs
}

// validateCreateRoutine runs every check before any write; invalid input
// must never leave partial state behind.
func validateCreateRoutine(input CreateRoutineInput) error {
  if strings.TrimSpace(input.Name) == "" {
    return apierr.Validation("Routine name is required")
  }
  if input.DurationInDays < 1 {
    return apierr.Validation("Duration must be at least 1 day")
  }
  if len(input.Tasks) == 0 {
    return apierr.Validation("At least one task is required")
  }
  for i, task := range input.Tasks {
    if strings.TrimSpace(task.Title) == "" {
      return apierr.Validationf("Task title is required at index %d", i)
    }
    if task.Priority != "" && !types.ValidTaskPriority(task.Priority) {
      return apierr.Validationf("Invalid priority for task at index %d", i)
    }
  }
  return nil
}

func (rs *routineService) CreateWithTasks(ctx context.Context, input CreateRoutineInput) (*types.Routine, []*types.Task, error) {
  userID := requestdata.UserID(ctx)
  if userID == uuid.Nil {
    return nil, nil, apierr.Unauthorized("Unauthorized request")
  }
  if err := validateCreateRoutine(input); err != nil {
    return nil, nil, err
  }

  isActive := input.IsActive != nil && *input.IsActive

  routine := &types.Routine{
    ID:             uuid.New(),
    UserID:         userID,
    Name:           strings.TrimSpace(input.Name),
    Description:    strings.TrimSpace(input.Description),
    IsActive:       isActive,
    DurationInDays: input.DurationInDays,
  }

  tasks := make([]*types.Task, 0, len(input.Tasks))
  for _, t := range input.Tasks {
    priority := t.Priority
    if priority == "" {
      priority = types.TaskPriorityMedium
    }
    tasks = append(tasks, &types.Task{
      ID:          uuid.New(),
      UserID:      userID,
      RoutineID:   routine.ID,
      Title:       strings.TrimSpace(t.Title),
      Description: strings.TrimSpace(t.Description),
      Priority:    priority,
    })
  }

  err := rs.txFn(ctx, func(tx *gorm.DB) error {
    if isActive {
      // Advisory only; the partial unique index on (user_id) WHERE
      // is_active is what actually holds when two creators race.
      if err := rs.routineRepo.DeactivateAllForUser(ctx, tx, userID); err != nil {
        return apierr.Map("deactivate routines", err)
      }
    }
    if _, err := rs.routineRepo.Create(ctx, tx, []*types.Routine{routine}); err != nil {
      return apierr.Map("create routine", err)
    }
    if _, err := rs.taskRepo.Create(ctx, tx, tasks); err != nil {
      return apierr.Map("create tasks", err)
    }
    return nil
  })
  if err != nil {
    return nil, nil, err
  }

  rs.invalidateOwner(ctx, userID)
  return routine, tasks, nil
}

func (rs *routineService) List(ctx context.Context) ([]RoutineSummary, error) {
  userID := requestdata.UserID(ctx)
  if userID == uuid.Nil {
    return nil, apierr.Unauthorized("Unauthorized request")
  }

  var cached []RoutineSummary
  if rs.statsCache.Get(ctx, summariesCacheKey(userID), &cached) {
    return cached, nil
  }

  routines, err := rs.routineRepo.GetAllByUserID(ctx, nil, userID)
  if err != nil {
    return nil, apierr.Map("list routines", err)
  }
  if len(routines) == 0 {
    return []RoutineSummary{}, nil
  }

  routineIDs := make([]uuid.UUID, 0, len(routines))
  for _, r := range routines {
    routineIDs = append(routineIDs, r.ID)
  }
  tasks, err := rs.taskRepo.GetByRoutineIDs(ctx, nil, routineIDs)
  if err != nil {
    return nil, apierr.Map("list tasks", err)
  }
  events, err := rs.progressRepo.GetByRoutineIDs(ctx, nil, routineIDs)
  if err != nil {
    return nil, apierr.Map("list progress", err)
  }

  tasksByRoutine := make(map[uuid.UUID][]*types.Task, len(routines))
  for _, t := range tasks {
    tasksByRoutine[t.RoutineID] = append(tasksByRoutine[t.RoutineID], t)
  }
  eventsByRoutine := make(map[uuid.UUID][]*types.Progress, len(routines))
  for _, e := range events {
    eventsByRoutine[e.RoutineID] = append(eventsByRoutine[e.RoutineID], e)
  }

  today := stats.TruncateDay(time.Now())
  summaries := make([]RoutineSummary, 0, len(routines))
  for _, r := range routines {
    summaries = append(summaries, summarize(r, stats.Compute(r, tasksByRoutine[r.ID], eventsByRoutine[r.ID], today)))
  }

  rs.statsCache.Set(ctx, summariesCacheKey(userID), summaries)
  return summaries, nil
}

func (rs *routineService) GetActive(ctx context.Context) (*ActiveRoutineDetail, error) {
  userID := requestdata.UserID(ctx)
  if userID == uuid.Nil {
    return nil, apierr.Unauthorized("Unauthorized request")
  }

  var cached ActiveRoutineDetail
  if rs.statsCache.Get(ctx, activeCacheKey(userID), &cached) {
    return &cached, nil
  }

  routine, err := rs.routineRepo.GetActiveByUserID(ctx, nil, userID)
  if err != nil {
    return nil, apierr.Map("fetch active routine", err)
  }
  if routine == nil {
    // No active routine is a result, not an error.
    return nil, nil
  }

  tasks, err := rs.taskRepo.GetByRoutineIDs(ctx, nil, []uuid.UUID{routine.ID})
  if err != nil {
    return nil, apierr.Map("fetch routine tasks", err)
  }
  events, err := rs.progressRepo.GetByRoutineIDs(ctx, nil, []uuid.UUID{routine.ID})
  if err != nil {
    return nil, apierr.Map("fetch routine progress", err)
  }

  today := stats.TruncateDay(time.Now())
  summary, breakdown := stats.ComputeDetail(routine, tasks, events, today)
  detail := &ActiveRoutineDetail{
    Routine: summarize(routine, summary),
    Tasks:   breakdown,
  }

  rs.statsCache.Set(ctx, activeCacheKey(userID), detail)
  return detail, nil
}

// Delete removes the routine and everything referencing it: tasks first,
// then progress, then the routine. The transaction makes the cascade
// all-or-nothing; a failing step surfaces Internal and rolls the rest back.
func (rs *routineService) Delete(ctx context.Context, routineID uuid.UUID) error {
  userID := requestdata.UserID(ctx)
  if userID == uuid.Nil {
    return apierr.Unauthorized("Unauthorized request")
  }
  if routineID == uuid.Nil {
    return apierr.Validation("Routine ID is required")
  }

  err := rs.txFn(ctx, func(tx *gorm.DB) error {
    routine, err := rs.routineRepo.GetByIDForUser(ctx, tx, routineID, userID)
    if err != nil {
      apiErr := apierr.Map("fetch routine", err)
      if apierr.IsCode(apiErr, apierr.CodeNotFound) {
        return apierr.NotFound("Routine not found")
      }
      return apiErr
    }
    if err := rs.taskRepo.FullDeleteByRoutineID(ctx, tx, routine.ID, userID); err != nil {
      return apierr.Map("delete routine tasks", err)
    }
    if err := rs.progressRepo.FullDeleteByRoutineID(ctx, tx, routine.ID, userID); err != nil {
      return apierr.Map("delete routine progress", err)
    }
    if err := rs.routineRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{routine.ID}); err != nil {
      return apierr.Map("delete routine", err)
    }
    return nil
  })
  if err != nil {
    return err
  }

  rs.invalidateOwner(ctx, userID)
  return nil
}

func summarize(r *types.Routine, s stats.RoutineStats) RoutineSummary {
  return RoutineSummary{
    ID:             r.ID,
    Name:           r.Name,
    Description:    r.Description,
    IsActive:       r.IsActive,
    DurationInDays: r.DurationInDays,
    CreatedAt:      r.CreatedAt,
    RoutineStats:   s,
  }
}

func (rs *routineService) invalidateOwner(ctx context.Context, userID uuid.UUID) {
  rs.statsCache.Del(ctx, ownerCacheKeys(userID)...)
}

func summariesCacheKey(userID uuid.UUID) string {
  return fmt.Sprintf("routinely:summaries:%s", userID)
}

func activeCacheKey(userID uuid.UUID) string {
  return fmt.Sprintf("routinely:active:%s", userID)
}

// ownerCacheKeys lists every cached projection for one owner; every write
// touching the owner's routines, tasks or ledger must drop them all.
func ownerCacheKeys(userID uuid.UUID) []string {
  return []string{summariesCacheKey(userID), activeCacheKey(userID)}
}
