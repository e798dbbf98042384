package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrLimitExceeded, http.StatusUnprocessableEntity},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := MapErrorToStatus(tc.err); got != tc.want {
			t.Fatalf("MapErrorToStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrapPreservesCategory(t *testing.T) {
	err := Wrap(ErrLimitExceeded, "course is full")

	if err.Error() != "course is full" {
		t.Fatalf("message lost: %q", err.Error())
	}
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatal("wrapped error should match its category")
	}
	if got := MapErrorToStatus(err); got != http.StatusUnprocessableEntity {
		t.Fatalf("wrapped error status = %d", got)
	}

	// A further fmt wrap still maps correctly.
	outer := fmt.Errorf("enroll: %w", err)
	if got := MapErrorToStatus(outer); got != http.StatusUnprocessableEntity {
		t.Fatalf("nested wrapped error status = %d", got)
	}
}
