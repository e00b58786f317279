package types

import (
  "time"
  "github.com/google/uuid"
)

// OtpToken holds one outstanding email verification code. The code itself
// is never stored, only its bcrypt hash. Attempts live on the token so the
// counter resets along with the token when it expires.
type OtpToken struct {
  ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email       string      `gorm:"uniqueIndex;not null;column:email" json:"email"`
  OtpHash     string      `gorm:"not null;column:otp_hash" json:"-"`
  Attempts    int         `gorm:"not null;default:0;column:attempts" json:"attempts"`
  ExpiresAt   time.Time   `gorm:"not null;column:expires_at" json:"expires_at"`
  CreatedAt   time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (OtpToken) TableName() string {
  return "otp_token"
}
