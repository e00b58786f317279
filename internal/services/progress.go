package services

import (
  "context"
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

type ProgressService interface {
  RecordTaskProgress(ctx context.Context, taskID uuid.UUID) (*types.Progress, error)
}

type progressService struct {
  db           *gorm.DB
  log          *logger.Logger
  routineRepo  repos.RoutineRepo
  taskRepo     repos.TaskRepo
  progressRepo repos.ProgressRepo
  statsCache   *cache.Cache
  now          func() time.Time
}

func NewProgressService(
  db *gorm.DB,
  log *logger.Logger,
  routineRepo repos.RoutineRepo,
  taskRepo repos.TaskRepo,
  progressRepo repos.ProgressRepo,
  statsCache *cache.Cache,
) ProgressService {
  serviceLog := log.With("service", "ProgressService")
  return &progressService{
    db:           db,
    log:          serviceLog,
    routineRepo:  routineRepo,
    taskRepo:     taskRepo,
    progressRepo: progressRepo,
    statsCache:   statsCache,
    now:          time.Now,
  }
}

// RecordTaskProgress appends one ledger entry for (owner, task, today).
// The check chain runs owner -> task -> routine -> window -> duplicate;
// only a fully authorized request reaches the insert. Two requests can
// still race past the duplicate check, in which case the unique index
// rejects the loser and the violation surfaces as Conflict, same as the
// pre-check would have.
func (ps *progressService) RecordTaskProgress(ctx context.Context, taskID uuid.UUID) (*types.Progress, error) {
  userID := requestdata.UserID(ctx)
  if userID == uuid.Nil {
    return nil, apierr.Unauthorized("Unauthorized request")
  }
  if taskID == uuid.Nil {
    return nil, apierr.Validation("Task ID is required")
  }

  // Server time; the event is always dated today.
  today := stats.TruncateDay(ps.now())

  task, err := ps.taskRepo.GetByIDForUser(ctx, nil, taskID, userID)
  if err != nil {
    apiErr := apierr.Map("fetch task", err)
    if apierr.IsCode(apiErr, apierr.CodeNotFound) {
      return nil, apierr.NotFound("Task not found")
    }
    return nil, apiErr
  }

  routine, err := ps.routineRepo.GetByIDForUser(ctx, nil, task.RoutineID, userID)
  if err != nil {
    apiErr := apierr.Map("fetch routine", err)
    if apierr.IsCode(apiErr, apierr.CodeNotFound) {
      return nil, apierr.NotFound("Routine not found")
    }
    return nil, apiErr
  }

  if !stats.InWindow(routine, today) {
    return nil, apierr.OutOfRange("Routine has ended or not started yet")
  }

  exists, err := ps.progressRepo.ExistsForDay(ctx, nil, userID, taskID, today)
  if err != nil {
    return nil, apierr.Map("check existing progress", err)
  }
  if exists {
    return nil, apierr.Conflict("Progress for this task already added today")
  }

  row := &types.Progress{
    ID:        uuid.New(),
    UserID:    userID,
    RoutineID: routine.ID,
    TaskID:    task.ID,
    Date:      today,
  }
  if _, err := ps.progressRepo.Create(ctx, nil, []*types.Progress{row}); err != nil {
    return nil, apierr.Map("record progress", err)
  }

  ps.statsCache.Del(ctx, ownerCacheKeys(userID)...)
  return row, nil
}
