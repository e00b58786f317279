package utils

import (
  "regexp"
  "strings"

  "golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func NormalizeEmail(email string) string {
  return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
  return emailPattern.MatchString(email)
}

func HashPassword(password string) (string, error) {
  hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
  if err != nil {
    return "", err
  }
  return string(hashed), nil
}

func CheckPassword(hashed, password string) bool {
  return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
