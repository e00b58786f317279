package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/types"
)

type TaskRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
  GetByIDForUser(ctx context.Context, tx *gorm.DB, taskID, userID uuid.UUID) (*types.Task, error)
  GetByRoutineIDs(ctx context.Context, tx *gorm.DB, routineIDs []uuid.UUID) ([]*types.Task, error)
  FullDeleteByRoutineID(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) error
}

type taskRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
  repoLog := baseLog.With("repo", "TaskRepo")
  return &taskRepo{db: db, log: repoLog}
}

func (r *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(tasks) == 0 {
    return []*types.Task{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
    return nil, err
  }
  return tasks, nil
}

func (r *taskRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, taskID, userID uuid.UUID) (*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Task
  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", taskID, userID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *taskRepo) GetByRoutineIDs(ctx context.Context, tx *gorm.DB, routineIDs []uuid.UUID) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Task
  if len(routineIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("routine_id IN ?", routineIDs).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *taskRepo) FullDeleteByRoutineID(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("routine_id = ? AND user_id = ?", routineID, userID).
    Delete(&types.Task{}).Error; err != nil {
    return err
  }
  return nil
}
