package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  TaskPriorityLow    = "Low"
  TaskPriorityMedium = "Medium"
  TaskPriorityHigh   = "High"
)

// ValidTaskPriority reports whether p is one of the allowed priorities.
func ValidTaskPriority(p string) bool {
  switch p {
  case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
    return true
  default:
    return false
  }
}

// Task belongs to exactly one routine and one owner. Tasks are created only
// as part of routine creation; there is no standalone add-task operation.
type Task struct {
  ID            uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID        uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
  User          *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
  RoutineID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"routine_id"`
  Routine       *Routine    `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoutineID;references:ID" json:"-"`
  Title         string      `gorm:"not null;column:title" json:"title"`
  Description   string      `gorm:"column:description" json:"description,omitempty"`
  Priority      string      `gorm:"not null;default:'Medium';column:priority" json:"priority"`
  CreatedAt     time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string {
  return "task"
}
