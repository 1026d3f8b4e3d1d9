package service

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "path",
				Message: "cannot be empty",
			},
			want: "validation error on field path: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	var err error = &ValidationError{Field: "query", Message: "cannot be empty"}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
}

func TestClassify(t *testing.T) {
	original := errors.New("connection refused")

	if got := Classify(ErrStore, nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}

	got := Classify(ErrEmbedding, original)
	if !errors.Is(got, ErrEmbedding) {
		t.Error("Classify() should match the kind")
	}
	if !errors.Is(got, original) {
		t.Error("Classify() should match the original error")
	}
	if got.Error() != "embedding error: connection refused" {
		t.Errorf("Classify() = %q", got.Error())
	}

	// Already classified errors are returned unchanged
	if again := Classify(ErrEmbedding, got); again != got {
		t.Errorf("Classify() re-wrapped an already classified error: %v", again)
	}
}

func TestErrorConstants(t *testing.T) {
	all := map[string]error{
		"ErrInvalidInput": ErrInvalidInput,
		"ErrNotFound":     ErrNotFound,
		"ErrEmbedding":    ErrEmbedding,
		"ErrStore":        ErrStore,
	}
	for name, err := range all {
		if err == nil {
			t.Errorf("%s should not be nil", name)
		}
		for otherName, other := range all {
			if name != otherName && errors.Is(err, other) {
				t.Errorf("%s should not match %s", name, otherName)
			}
		}
	}
}
