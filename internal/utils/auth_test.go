package utils

import "testing"

func TestNormalizeEmail(t *testing.T) {
  cases := map[string]string{
    "Pat@Example.com":    "pat@example.com",
    "  pat@example.com ": "pat@example.com",
    "PAT@EXAMPLE.COM":    "pat@example.com",
    "":                   "",
  }
  for in, want := range cases {
    if got := NormalizeEmail(in); got != want {
      t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
    }
  }
}

func TestValidEmail(t *testing.T) {
  valid := []string{"pat@example.com", "a.b+c@sub.example.org"}
  for _, email := range valid {
    if !ValidEmail(email) {
      t.Fatalf("ValidEmail(%q) = false, want true", email)
    }
  }
  invalid := []string{"", "pat", "pat@", "@example.com", "pat@example", "pat @example.com"}
  for _, email := range invalid {
    if ValidEmail(email) {
      t.Fatalf("ValidEmail(%q) = true, want false", email)
    }
  }
}

func TestPasswordHashRoundTrip(t *testing.T) {
  hashed, err := HashPassword("hunter22")
  if err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  if hashed == "hunter22" {
    t.Fatalf("password stored in the clear")
  }
  if !CheckPassword(hashed, "hunter22") {
    t.Fatalf("correct password rejected")
  }
  if CheckPassword(hashed, "hunter23") {
    t.Fatalf("wrong password accepted")
  }
}
