package repos

import (
  "context"
  "time"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/types"
)

type OtpTokenRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tokens []*types.OtpToken) ([]*types.OtpToken, error)
  GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.OtpToken, error)
  IncrementAttempts(ctx context.Context, tx *gorm.DB, email string) (*types.OtpToken, error)
  FullDeleteByEmails(ctx context.Context, tx *gorm.DB, emails []string) error
  FullDeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) error
}

type otpTokenRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewOtpTokenRepo(db *gorm.DB, baseLog *logger.Logger) OtpTokenRepo {
  repoLog := baseLog.With("repo", "OtpTokenRepo")
  return &otpTokenRepo{db: db, log: repoLog}
}

func (r *otpTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.OtpToken) ([]*types.OtpToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(tokens) == 0 {
    return []*types.OtpToken{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&tokens).Error; err != nil {
    return nil, err
  }
  return tokens, nil
}

func (r *otpTokenRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.OtpToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.OtpToken
  if len(emails) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("email IN ?", emails).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// IncrementAttempts bumps the attempt counter atomically and returns the
// updated row, so concurrent verify calls cannot both observe a count
// below the cap.
func (r *otpTokenRepo) IncrementAttempts(ctx context.Context, tx *gorm.DB, email string) (*types.OtpToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.OtpToken{}).
    Where("email = ?", email).
    Update("attempts", gorm.Expr("attempts + 1"))
  if res.Error != nil {
    return nil, res.Error
  }
  if res.RowsAffected == 0 {
    return nil, gorm.ErrRecordNotFound
  }

  var updated types.OtpToken
  if err := transaction.WithContext(ctx).
    Where("email = ?", email).
    First(&updated).Error; err != nil {
    return nil, err
  }
  return &updated, nil
}

func (r *otpTokenRepo) FullDeleteByEmails(ctx context.Context, tx *gorm.DB, emails []string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(emails) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("email IN ?", emails).
    Delete(&types.OtpToken{}).Error; err != nil {
    return err
  }
  return nil
}

func (r *otpTokenRepo) FullDeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("expires_at < ?", before).
    Delete(&types.OtpToken{}).Error; err != nil {
    return err
  }
  return nil
}
