package services

import (
  "context"
  "fmt"
  "strings"
  "time"
  "gorm.io/gorm"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/yungbote/routinely-backend/internal/apierr"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/repos"
  "github.com/yungbote/routinely-backend/internal/requestdata"
  "github.com/yungbote/routinely-backend/internal/types"
  "github.com/yungbote/routinely-backend/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, fullName, email, password string) (*types.User, error)
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  IssueSession(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, fullName, email, password string) (*types.User, error) {
  fullName = strings.TrimSpace(fullName)
  email = utils.NormalizeEmail(email)

  if fullName == "" || email == "" || password == "" {
    return nil, apierr.Validation("All fields are required")
  }
  if !utils.ValidEmail(email) {
    return nil, apierr.Validation("Invalid email address")
  }
  if len(password) < 8 {
    return nil, apierr.Validation("Password must be at least 8 characters")
  }

  exists, err := as.userRepo.EmailExists(ctx, nil, email)
  if err != nil {
    return nil, apierr.Map("check email", err)
  }
  if exists {
    return nil, apierr.Conflict("User with this email already exists")
  }

  hashed, err := utils.HashPassword(password)
  if err != nil {
    return nil, apierr.Internal("hash password", err)
  }

  user := &types.User{
    ID:       uuid.New(),
    Email:    email,
    Password: hashed,
    FullName: fullName,
  }
  if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
    // Two concurrent registrations can both pass EmailExists; the unique
    // index on email settles it.
    return nil, apierr.Map("create user", err)
  }
  return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = utils.NormalizeEmail(email)
  if email == "" || password == "" {
    return "", "", apierr.Validation("All fields are required")
  }

  users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return "", "", apierr.Map("fetch user by email", err)
  }
  if len(users) == 0 {
    return "", "", apierr.NotFound("User not found with this email")
  }
  user := users[0]

  if !user.IsVerified {
    return "", "", apierr.Conflict("User not verified")
  }
  if !utils.CheckPassword(user.Password, password) {
    return "", "", apierr.Unauthorized("Invalid user credentials")
  }

  return as.IssueSession(ctx, nil, user)
}

// IssueSession creates a fresh access/refresh token pair for the user and
// persists it so logout and refresh are server-side revocable.
func (as *authService) IssueSession(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
  accessToken, err := as.generateAccessToken(user)
  if err != nil {
    return "", "", apierr.Internal("generate access token", err)
  }
  refreshToken := uuid.New().String()
  userToken := &types.UserToken{
    ID:           uuid.New(),
    UserID:       user.ID,
    AccessToken:  accessToken,
    RefreshToken: refreshToken,
    ExpiresAt:    time.Now().Add(as.refreshTTL),
  }
  if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
    return "", "", apierr.Map("create user token", err)
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.RefreshToken == "" {
    return "", "", apierr.Unauthorized("No refresh token in request")
  }

  var accessToken, newRefreshToken string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if err != nil {
      return apierr.Map("fetch refresh token", err)
    }
    if len(foundTokens) == 0 {
      return apierr.Unauthorized("Invalid refresh token")
    }
    existing := foundTokens[0]
    if existing.ExpiresAt.Before(time.Now()) {
      if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
        as.log.Warn("Failed to delete expired refresh token", "error", err)
      }
      return apierr.Unauthorized("Refresh token expired")
    }

    users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
    if err != nil {
      return apierr.Map("load user for refresh", err)
    }
    if len(users) == 0 {
      return apierr.Unauthorized("No user for the given refresh token")
    }

    accessToken, newRefreshToken, err = as.IssueSession(ctx, tx, users[0])
    if err != nil {
      return err
    }
    if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
      return apierr.Map("rotate refresh token", err)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return apierr.Unauthorized("No session in request")
  }
  foundTokens, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{rd.TokenString})
  if err != nil {
    return apierr.Map("fetch user token", err)
  }
  if len(foundTokens) == 0 {
    return nil
  }
  if err := as.userTokenRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{foundTokens[0].ID}); err != nil {
    return apierr.Map("delete user token", err)
  }
  return nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
      ID:        uuid.New().String(),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, apierr.Unauthorized("missing token")
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthorized("invalid or expired token")
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthorized("invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthorized("invalid user id in token")
  }

  foundTokens, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if err != nil {
    return ctx, apierr.Map("fetch session", err)
  }
  if len(foundTokens) == 0 {
    // Token signature is fine but the session was revoked.
    return ctx, apierr.Unauthorized("session revoked")
  }

  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: foundTokens[0].RefreshToken,
    UserID:       userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
