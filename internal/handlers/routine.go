package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/routinely-backend/internal/apierr"
  "github.com/yungbote/routinely-backend/internal/services"
)

type RoutineHandler struct {
  routineService services.RoutineService
}

func NewRoutineHandler(routineService services.RoutineService) *RoutineHandler {
  return &RoutineHandler{routineService: routineService}
}

func (rh *RoutineHandler) Create(c *gin.Context) {
  var req services.CreateRoutineInput
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  routine, tasks, err := rh.routineService.CreateWithTasks(c.Request.Context(), req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"routine": routine, "tasks": tasks})
}

func (rh *RoutineHandler) List(c *gin.Context) {
  summaries, err := rh.routineService.List(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"routines": summaries})
}

func (rh *RoutineHandler) GetActive(c *gin.Context) {
  detail, err := rh.routineService.GetActive(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  if detail == nil {
    // Having no active routine is a normal state, not a 404.
    RespondOK(c, gin.H{"routine": nil, "message": "No active routine found"})
    return
  }
  RespondOK(c, detail)
}

func (rh *RoutineHandler) Delete(c *gin.Context) {
  routineID, err := uuid.Parse(c.Param("routineId"))
  if err != nil {
    RespondError(c, apierr.Validation("Routine ID is required"))
    return
  }
  if err := rh.routineService.Delete(c.Request.Context(), routineID); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "Routine and all associated tasks and progress deleted successfully"})
}
