package types

import (
  "time"
  "github.com/google/uuid"
)

// Progress is one immutable ledger entry: task completed on calendar day
// Date. Date carries no time component. The composite unique index on
// (user_id, task_id, date) is the authoritative one-event-per-day guard;
// concurrent inserts past the service pre-check lose with a 23505.
type Progress struct {
  ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_progress_owner_task_date,unique" json:"user_id"`
  User        *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
  RoutineID   uuid.UUID   `gorm:"type:uuid;index;not null" json:"routine_id"`
  Routine     *Routine    `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoutineID;references:ID" json:"-"`
  TaskID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_progress_owner_task_date,unique" json:"task_id"`
  Task        *Task       `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"-"`
  Date        time.Time   `gorm:"type:date;not null;index:idx_progress_owner_task_date,unique" json:"date"`
  CreatedAt   time.Time   `gorm:"not null;default:now()" json:"created_at"`
}

func (Progress) TableName() string {
  return "progress"
}
