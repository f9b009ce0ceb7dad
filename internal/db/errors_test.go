package db

import (
	"context"
	"errors"
	"testing"
)

func TestConnectionError_IsErrConnection(t *testing.T) {
	err := error(&ConnectionError{Op: OpPing, Err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")})

	if !errors.Is(err, ErrConnection) {
		t.Fatal("expected errors.Is(err, ErrConnection)")
	}
	if got := err.Error(); got != "PING: connection error: dial tcp 127.0.0.1:6379: connect: connection refused" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestConnectionError_UnwrapsCause(t *testing.T) {
	err := error(&ConnectionError{Op: OpSearch, Err: context.DeadlineExceeded})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable via errors.Is")
	}
}

func TestError_IsNotConnectionError(t *testing.T) {
	err := error(&Error{Op: OpCreateIndex, Err: errors.New("Invalid field type")})
	if errors.Is(err, ErrConnection) {
		t.Error("server errors must not match ErrConnection")
	}
	if err.Error() != "FT.CREATE: Invalid field type" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
