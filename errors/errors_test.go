package errors

import (
	"errors"
	"testing"
)

// TestErrorIs tests the code-based Is implementation for Error.
func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error code matches",
			err:    ErrServiceNotFound("test.Service", nil),
			target: ErrServiceNotFoundSentinel,
			want:   true,
		},
		{
			name:   "different error code does not match",
			err:    ErrServiceNotFound("test.Service", nil),
			target: ErrCircularDependencySentinel,
			want:   false,
		},
		{
			name:   "wrapped error matches",
			err:    ErrConstructionFailed("test.Repo", nil, ErrServiceNotFound("test.DB", nil)),
			target: ErrServiceNotFoundSentinel,
			want:   true,
		},
		{
			name:   "nil target does not match",
			err:    ErrServiceNotFound("test.Service", nil),
			target: nil,
			want:   false,
		},
		{
			name:   "non structured target does not match",
			err:    ErrScopeEnded("scope-1"),
			target: errors.New("scope-1"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDependencyFailedKeepsCode verifies kind checks survive chain wrapping.
func TestDependencyFailedKeepsCode(t *testing.T) {
	inner := ErrServiceNotFound("test.DB", []string{"test.Repo"})
	wrapped := ErrDependencyFailed("test.Repo", "test.DB", inner)

	if !IsServiceNotFound(wrapped) {
		t.Errorf("wrapped dependency failure lost its SERVICE_NOT_FOUND code: %v", wrapped)
	}
	if got := Chain(wrapped); len(got) != 1 || got[0] != "test.Repo" {
		t.Errorf("Chain() = %v, want [test.Repo]", got)
	}
}

// TestCircularDependencyMessage verifies the full cycle path appears in the message.
func TestCircularDependencyMessage(t *testing.T) {
	err := ErrCircularDependency([]string{"A", "B", "A"})

	want := "[CIRCULAR_DEPENDENCY] circular dependency detected: A -> B -> A"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !IsCircularDependency(err) {
		t.Error("IsCircularDependency() = false, want true")
	}
}

// TestDisposalError tests aggregation and sentinel matching.
func TestDisposalError(t *testing.T) {
	t.Run("no failures yields nil", func(t *testing.T) {
		if err := NewDisposalError("scope-1", nil); err != nil {
			t.Errorf("NewDisposalError() = %v, want nil", err)
		}
	})

	t.Run("aggregates all failures", func(t *testing.T) {
		first := errors.New("close pipe")
		second := errors.New("close file")
		err := NewDisposalError("scope-1", []error{first, second})

		var disposal *DisposalError
		if !As(err, &disposal) {
			t.Fatalf("As() failed for %T", err)
		}
		if len(disposal.Errors) != 2 {
			t.Errorf("len(Errors) = %d, want 2", len(disposal.Errors))
		}
		if !Is(err, ErrDisposalFailedSentinel) {
			t.Error("disposal error does not match sentinel")
		}
		if !Is(err, first) || !Is(err, second) {
			t.Error("individual failures not reachable through Unwrap")
		}
	})
}

// TestScopeEnded verifies the scope ID lands in the message.
func TestScopeEnded(t *testing.T) {
	err := ErrScopeEnded("3f2c")
	if !IsScopeEnded(err) {
		t.Error("IsScopeEnded() = false, want true")
	}
	if got, want := err.Error(), "[SCOPE_ENDED] scope 3f2c has ended"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
