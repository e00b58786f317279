package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/yungbote/routinely-backend/internal/apierr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

// RespondError writes the error envelope, mapping api errors to their
// carried status and anything else to a plain 500.
func RespondError(c *gin.Context, err error) {
  var apiErr *apierr.Error
  if errors.As(err, &apiErr) {
    c.JSON(apiErr.Status, ErrorEnvelope{
      Error: APIError{Message: apiErr.Error(), Code: apiErr.Code},
    })
    return
  }
  c.JSON(http.StatusInternalServerError, ErrorEnvelope{
    Error: APIError{Message: "internal error", Code: apierr.CodeInternal},
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}
