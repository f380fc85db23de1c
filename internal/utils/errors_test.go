package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *AppError
		want string
	}{
		{&AppError{Op: "Svc.Do", Message: "failed", Err: cause}, "Svc.Do: failed: boom"},
		{&AppError{Op: "Svc.Do", Message: "failed"}, "Svc.Do: failed"},
		{&AppError{Message: "failed"}, "failed"},
		{&AppError{Err: cause}, "boom"},
		{&AppError{}, "error"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", E(CodeNotFound, "Repo.Get", "missing", nil))

	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Errorf("CodeOf(wrapped) = %q", got)
	}
	if got := CodeOf(ErrNotFound); got != CodeNotFound {
		t.Errorf("CodeOf(ErrNotFound) = %q", got)
	}
	if got := CodeOf(errors.New("x")); got != CodeInternal {
		t.Errorf("CodeOf(plain) = %q", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q", got)
	}
	if !IsCode(wrapped, CodeNotFound) {
		t.Error("IsCode should see through wrapping")
	}
}

func TestExternal(t *testing.T) {
	timeout := External("Svc.Call", "stt failed", fmt.Errorf("rpc: %w", context.DeadlineExceeded))
	if !IsCode(timeout, CodeTimeout) {
		t.Errorf("expected timeout code, got %q", CodeOf(timeout))
	}
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Error("cause should stay reachable")
	}

	down := External("Svc.Call", "stt failed", errors.New("unavailable"))
	if !IsCode(down, CodeUnavailable) {
		t.Errorf("expected unavailable code, got %q", CodeOf(down))
	}
	if HTTPStatus(down) != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus = %d", HTTPStatus(down))
	}
}

func TestRetryableAndStatus(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
		status    int
	}{
		{E(CodeUnavailable, "op", "db down", nil), true, http.StatusServiceUnavailable},
		{E(CodeTimeout, "op", "slow", nil), true, http.StatusGatewayTimeout},
		{errors.New("driver: bad connection"), true, http.StatusInternalServerError},
		{E(CodeNotFound, "op", "missing", ErrNotFound), false, http.StatusNotFound},
		{fmt.Errorf("repo: %w", ErrNotFound), false, http.StatusNotFound},
		{E(CodeInvalidArgument, "op", "bad", nil), false, http.StatusBadRequest},
		{E(CodeConflict, "op", "exists", nil), false, http.StatusConflict},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.retryable {
			t.Errorf("Retryable(%v) = %v", tt.err, got)
		}
		if got := HTTPStatus(tt.err); got != tt.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
