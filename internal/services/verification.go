package services

import (
  "context"
  "crypto/rand"
  "fmt"
  "math/big"
  "time"
  "golang.org/x/crypto/bcrypt"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/routinely-backend/internal/apierr"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/repos"
  "github.com/yungbote/routinely-backend/internal/sendgrid"
  "github.com/yungbote/routinely-backend/internal/types"
  "github.com/yungbote/routinely-backend/internal/utils"
)

const (
  otpTTL         = 5 * time.Minute
  otpMaxAttempts = 3
  otpBcryptCost  = 11
)

// VerificationService runs the email OTP flow: a 4-digit code is mailed,
// stored only as a bcrypt hash, and burned after three wrong guesses or
// five minutes, whichever comes first. A successful verify marks the user
// verified and opens a session, so the client lands logged in.
type VerificationService interface {
  SendVerificationEmail(ctx context.Context, email string) error
  VerifyOTP(ctx context.Context, email, otp string) (*types.User, string, string, error)
}

type verificationService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  otpTokenRepo repos.OtpTokenRepo
  authService  AuthService
  mailer       sendgrid.Client
}

func NewVerificationService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  otpTokenRepo repos.OtpTokenRepo,
  authService AuthService,
  mailer sendgrid.Client,
) VerificationService {
  serviceLog := log.With("service", "VerificationService")
  return &verificationService{
    db:           db,
    log:          serviceLog,
    userRepo:     userRepo,
    otpTokenRepo: otpTokenRepo,
    authService:  authService,
    mailer:       mailer,
  }
}

func (vs *verificationService) SendVerificationEmail(ctx context.Context, email string) error {
  email = utils.NormalizeEmail(email)
  if email == "" {
    return apierr.Validation("Email is required")
  }

  users, err := vs.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return apierr.Map("fetch user by email", err)
  }
  if len(users) == 0 {
    return apierr.NotFound("User not found with this email")
  }
  if users[0].IsVerified {
    return apierr.Conflict("User already verified")
  }

  // Expired tokens are garbage; clearing them here is what resets the
  // attempt counter.
  if err := vs.otpTokenRepo.FullDeleteExpired(ctx, nil, time.Now()); err != nil {
    vs.log.Warn("Failed to clear expired otp tokens", "error", err)
  }

  existing, err := vs.otpTokenRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return apierr.Map("fetch otp token", err)
  }
  if len(existing) > 0 && existing[0].ExpiresAt.After(time.Now()) {
    return apierr.Conflict("Verification already sent")
  }
  if len(existing) > 0 {
    if err := vs.otpTokenRepo.FullDeleteByEmails(ctx, nil, []string{email}); err != nil {
      return apierr.Map("delete stale otp token", err)
    }
  }

  // Without a mailer the code could never reach the user, yet a stored
  // token would still block resends for its full TTL. Bail out before
  // persisting anything.
  if vs.mailer == nil {
    return apierr.Internal("send verification email", fmt.Errorf("email delivery unavailable"))
  }

  otp, err := generateOTP()
  if err != nil {
    return apierr.Internal("generate otp", err)
  }
  otpHash, err := bcrypt.GenerateFromPassword([]byte(otp), otpBcryptCost)
  if err != nil {
    return apierr.Internal("hash otp", err)
  }

  token := &types.OtpToken{
    ID:        uuid.New(),
    Email:     email,
    OtpHash:   string(otpHash),
    ExpiresAt: time.Now().Add(otpTTL),
  }
  if _, err := vs.otpTokenRepo.Create(ctx, nil, []*types.OtpToken{token}); err != nil {
    return apierr.Map("create otp token", err)
  }

  sendErr := vs.mailer.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: email}},
    Subject: "Your verification code",
    Text:    fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", otp),
  })
  if sendErr != nil {
    vs.log.Error("Failed to send verification email", "error", sendErr)
    return apierr.Internal("send verification email", sendErr)
  }
  return nil
}

func (vs *verificationService) VerifyOTP(ctx context.Context, email, otp string) (*types.User, string, string, error) {
  email = utils.NormalizeEmail(email)
  if email == "" || otp == "" {
    return nil, "", "", apierr.Validation("Email and OTP are required")
  }

  tokens, err := vs.otpTokenRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return nil, "", "", apierr.Map("fetch otp token", err)
  }
  if len(tokens) == 0 || tokens[0].ExpiresAt.Before(time.Now()) {
    return nil, "", "", apierr.NotFound("Verification code expired or not found")
  }
  token := tokens[0]

  if token.Attempts >= otpMaxAttempts {
    return nil, "", "", apierr.Forbidden("Maximum attempts reached, request a new code")
  }

  // Burn the attempt before comparing so a failed compare still counts.
  if _, err := vs.otpTokenRepo.IncrementAttempts(ctx, nil, email); err != nil {
    return nil, "", "", apierr.Map("increment otp attempts", err)
  }

  if bcrypt.CompareHashAndPassword([]byte(token.OtpHash), []byte(otp)) != nil {
    return nil, "", "", apierr.Validation("Invalid OTP")
  }

  var user *types.User
  var accessToken, refreshToken string
  err = vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := vs.userRepo.MarkVerified(ctx, tx, email); err != nil {
      return apierr.Map("mark user verified", err)
    }
    users, err := vs.userRepo.GetByEmails(ctx, tx, []string{email})
    if err != nil {
      return apierr.Map("fetch verified user", err)
    }
    if len(users) == 0 {
      return apierr.NotFound("User not found")
    }
    user = users[0]
    if err := vs.otpTokenRepo.FullDeleteByEmails(ctx, tx, []string{email}); err != nil {
      return apierr.Map("delete otp token", err)
    }
    accessToken, refreshToken, err = vs.authService.IssueSession(ctx, tx, user)
    return err
  })
  if err != nil {
    return nil, "", "", err
  }
  return user, accessToken, refreshToken, nil
}

func generateOTP() (string, error) {
  // 4 digits, 1000-9999, crypto randomness.
  n, err := rand.Int(rand.Reader, big.NewInt(9000))
  if err != nil {
    return "", err
  }
  return fmt.Sprintf("%d", n.Int64()+1000), nil
}
