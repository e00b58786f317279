package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/types"
)

// ProgressRepo is the append-only ledger. Rows are never updated; they are
// removed only through routine cascade delete.
type ProgressRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Progress) ([]*types.Progress, error)
  GetByRoutineIDs(ctx context.Context, tx *gorm.DB, routineIDs []uuid.UUID) ([]*types.Progress, error)
  ExistsForDay(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID, date time.Time) (bool, error)
  FullDeleteByRoutineID(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) error
}

type progressRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
  repoLog := baseLog.With("repo", "ProgressRepo")
  return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Progress) ([]*types.Progress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Progress{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *progressRepo) GetByRoutineIDs(ctx context.Context, tx *gorm.DB, routineIDs []uuid.UUID) ([]*types.Progress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Progress
  if len(routineIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("routine_id IN ?", routineIDs).
    Order("date ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// ExistsForDay is the pre-insert duplicate check. It is an optimization
// only; the unique index on (user_id, task_id, date) is what actually
// holds under concurrent requests.
func (r *progressRepo) ExistsForDay(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID, date time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Progress{}).
    Where("user_id = ? AND task_id = ? AND date = ?", userID, taskID, date).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *progressRepo) FullDeleteByRoutineID(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("routine_id = ? AND user_id = ?", routineID, userID).
    Delete(&types.Progress{}).Error; err != nil {
    return err
  }
  return nil
}
