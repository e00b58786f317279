package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/types"
  "github.com/yungbote/routinely-backend/internal/utils"
  "github.com/yungbote/routinely-backend/internal/logger"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "routinely", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
    TranslateError:                           true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.OtpToken{},
    &types.Routine{},
    &types.Task{},
    &types.Progress{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  s.log.Info("Configuring storage-level invariants for postgres tables...")

  // At most one active routine per owner. The service's
  // deactivate-then-insert sequence is advisory only; this index is the
  // guard that holds under concurrent writers.
  if err := s.db.Exec(`
    CREATE UNIQUE INDEX IF NOT EXISTS "uq_routine_owner_active"
    ON "routine" ("user_id")
    WHERE "is_active"
  `).Error; err != nil {
    return fmt.Errorf("Failed to create uq_routine_owner_active: %w", err)
  }

  for _, ddl := range []struct {
    name string
    sql  string
  }{
    {"fk_user_token_user_id", `
      ALTER TABLE "user_token"
      ADD CONSTRAINT "fk_user_token_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_routine_user_id", `
      ALTER TABLE "routine"
      ADD CONSTRAINT "fk_routine_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_task_routine_id", `
      ALTER TABLE "task"
      ADD CONSTRAINT "fk_task_routine_id"
      FOREIGN KEY ("routine_id") REFERENCES "routine"("id")
      ON DELETE CASCADE`},
    {"fk_progress_routine_id", `
      ALTER TABLE "progress"
      ADD CONSTRAINT "fk_progress_routine_id"
      FOREIGN KEY ("routine_id") REFERENCES "routine"("id")
      ON DELETE CASCADE`},
    {"fk_progress_task_id", `
      ALTER TABLE "progress"
      ADD CONSTRAINT "fk_progress_task_id"
      FOREIGN KEY ("task_id") REFERENCES "task"("id")
      ON DELETE CASCADE`},
  } {
    if err := s.db.Exec(ddl.sql).Error; err != nil {
      // Re-running migrations against an already-constrained schema is fine.
      s.log.Debug("Constraint already present or failed", "constraint", ddl.name, "error", err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
