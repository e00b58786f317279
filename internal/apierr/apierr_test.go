package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{Unauthorized("no"), http.StatusUnauthorized, CodeUnauthorized},
		{Forbidden("no"), http.StatusForbidden, CodeForbidden},
		{Validation("bad"), http.StatusBadRequest, CodeValidation},
		{NotFound("gone"), http.StatusNotFound, CodeNotFound},
		{Conflict("dup"), http.StatusConflict, CodeConflict},
		{OutOfRange("late"), http.StatusBadRequest, CodeOutOfRange},
		{Internal("op", errors.New("boom")), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.status || tc.err.Code != tc.code {
			t.Fatalf("%s: status/code = %d/%s, want %d/%s",
				tc.code, tc.err.Status, tc.err.Code, tc.status, tc.code)
		}
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NotFound("gone"), CodeNotFound) {
		t.Fatalf("IsCode missed a direct api error")
	}
	wrapped := fmt.Errorf("outer: %w", Conflict("dup"))
	if !IsCode(wrapped, CodeConflict) {
		t.Fatalf("IsCode missed a wrapped api error")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Fatalf("IsCode matched a plain error")
	}
	if IsCode(nil, CodeInternal) {
		t.Fatalf("IsCode matched nil")
	}
}

func TestMap_PassesThroughApiErrors(t *testing.T) {
	original := Validation("bad input")
	mapped := Map("op", original)
	var apiErr *Error
	if !errors.As(mapped, &apiErr) || apiErr != original {
		t.Fatalf("expected the original api error back, got %v", mapped)
	}
}

func TestMap_RecordNotFound(t *testing.T) {
	mapped := Map("fetch", gorm.ErrRecordNotFound)
	if !IsCode(mapped, CodeNotFound) {
		t.Fatalf("expected not_found, got %v", mapped)
	}
}

func TestMap_UniquenessViolations(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"gorm translated", gorm.ErrDuplicatedKey},
		{"pg unique", &pgconn.PgError{Code: "23505"}},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})},
		{"string fallback", errors.New(`ERROR: duplicate key value violates unique constraint "idx_progress_owner_task_date" (SQLSTATE 23505)`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := Map("insert", tc.err)
			if !IsCode(mapped, CodeConflict) {
				t.Fatalf("expected conflict, got %v", mapped)
			}
		})
	}
}

func TestMap_UnknownErrorIsInternal(t *testing.T) {
	mapped := Map("op", errors.New("connection reset"))
	var apiErr *Error
	if !errors.As(mapped, &apiErr) {
		t.Fatalf("expected api error, got %v", mapped)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Code != CodeInternal {
		t.Fatalf("expected internal 500, got %d/%s", apiErr.Status, apiErr.Code)
	}
}

func TestMap_Nil(t *testing.T) {
	if Map("op", nil) != nil {
		t.Fatalf("Map(nil) must stay nil")
	}
}
