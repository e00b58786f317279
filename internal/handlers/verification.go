package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/yungbote/routinely-backend/internal/apierr"
  "github.com/yungbote/routinely-backend/internal/services"
)

type VerificationHandler struct {
  verificationService services.VerificationService
  authService         services.AuthService
}

func NewVerificationHandler(verificationService services.VerificationService, authService services.AuthService) *VerificationHandler {
  return &VerificationHandler{verificationService: verificationService, authService: authService}
}

func (vh *VerificationHandler) SendVerificationEmail(c *gin.Context) {
  var req struct {
    Email string `json:"email"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  if err := vh.verificationService.SendVerificationEmail(c.Request.Context(), req.Email); err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "OTP sent successfully"})
}

func (vh *VerificationHandler) VerifyOTP(c *gin.Context) {
  var req struct {
    Email string `json:"email"`
    Otp   string `json:"otp"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  user, accessToken, refreshToken, err := vh.verificationService.VerifyOTP(c.Request.Context(), req.Email, req.Otp)
  if err != nil {
    RespondError(c, err)
    return
  }
  expiresIn := int(vh.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{
    "user":          user,
    "access_token":  accessToken,
    "refresh_token": refreshToken,
    "expires_in":    expiresIn,
  })
}
