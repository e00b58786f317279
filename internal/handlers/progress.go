package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/routinely-backend/internal/apierr"
  "github.com/yungbote/routinely-backend/internal/services"
)

type ProgressHandler struct {
  progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
  return &ProgressHandler{progressService: progressService}
}

func (ph *ProgressHandler) AddTaskProgress(c *gin.Context) {
  var req struct {
    TaskID string `json:"task_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  taskID, err := uuid.Parse(req.TaskID)
  if err != nil {
    RespondError(c, apierr.Validation("Task ID is required"))
    return
  }
  progress, err := ph.progressService.RecordTaskProgress(c.Request.Context(), taskID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"progress": progress})
}
