package apperr

import (
	"errors"
	"fmt"
	"net"
	"os"
	"testing"

	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"wrapped record not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), KindNotFound},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, KindUnavailable},
		{"deadline", os.ErrDeadlineExceeded, KindUnavailable},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("failed", tt.err)
			if got.Kind != tt.want {
				t.Errorf("Classify(%v) kind = %v, want %v", tt.err, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyPreservesExistingKind(t *testing.T) {
	inner := Validation("bad input", "front too long")
	got := Classify("failed", fmt.Errorf("create: %w", inner))
	if got.Kind != KindValidation {
		t.Errorf("kind = %v, want KindValidation", got.Kind)
	}
	if got.Details != "front too long" {
		t.Errorf("details = %q, want preserved", got.Details)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(NotFound("missing")) != KindNotFound {
		t.Error("KindOf should unwrap tagged errors")
	}
	if KindOf(errors.New("x")) != KindInternal {
		t.Error("KindOf should default to KindInternal")
	}
}

func TestErrorStringIncludesKind(t *testing.T) {
	err := Unavailable("database unreachable", errors.New("dial tcp: refused"))
	if got := err.Error(); got != "unavailable: database unreachable: dial tcp: refused" {
		t.Errorf("unexpected error string: %q", got)
	}
}
