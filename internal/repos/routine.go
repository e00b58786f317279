package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/types"
)

type RoutineRepo interface {
  Create(ctx context.Context, tx *gorm.DB, routines []*types.Routine) ([]*types.Routine, error)
  GetByIDForUser(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) (*types.Routine, error)
  GetAllByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Routine, error)
  GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Routine, error)
  DeactivateAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type routineRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRoutineRepo(db *gorm.DB, baseLog *logger.Logger) RoutineRepo {
  repoLog := baseLog.With("repo", "RoutineRepo")
  return &routineRepo{db: db, log: repoLog}
}

func (r *routineRepo) Create(ctx context.Context, tx *gorm.DB, routines []*types.Routine) ([]*types.Routine, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(routines) == 0 {
    return []*types.Routine{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&routines).Error; err != nil {
    return nil, err
  }
  return routines, nil
}

func (r *routineRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) (*types.Routine, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Routine
  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", routineID, userID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *routineRepo) GetAllByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Routine, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Routine
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetActiveByUserID returns (nil, nil) when the owner has no active
// routine; "no active routine" is a result, not an error.
func (r *routineRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Routine, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Routine
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND is_active", userID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *routineRepo) DeactivateAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Routine{}).
    Where("user_id = ? AND is_active", userID).
    Update("is_active", false).Error; err != nil {
    return err
  }
  return nil
}

func (r *routineRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Routine{}).Error; err != nil {
    return err
  }
  return nil
}
