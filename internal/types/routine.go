package types

import (
  "time"
  "github.com/google/uuid"
)

// Routine is a time-boxed plan owned by one user. Its start date is
// CreatedAt truncated to midnight; the window runs durationInDays from
// there, inclusive. At most one routine per owner may be active, enforced
// by a partial unique index (see db.AutoMigrateAll).
type Routine struct {
  ID              uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID          uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
  User            *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
  Name            string      `gorm:"not null;column:name" json:"name"`
  Description     string      `gorm:"column:description" json:"description,omitempty"`
  IsActive        bool        `gorm:"not null;default:false;column:is_active" json:"is_active"`
  DurationInDays  int         `gorm:"not null;column:duration_in_days" json:"duration_in_days"`
  CreatedAt       time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Routine) TableName() string {
  return "routine"
}
