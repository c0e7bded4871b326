package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ankiflow/internal/service"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidRun    = errors.New("invalid run record")
	ErrInvalidAction = errors.New("invalid action record")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run service.RunRecord) error {
	if run.Profile == "" {
		return fmt.Errorf("%w: profile is required", ErrInvalidRun)
	}
	if run.Seq <= 0 {
		return fmt.Errorf("%w: seq must be positive, got %d", ErrInvalidRun, run.Seq)
	}
	if run.FinishedAt.IsZero() {
		return fmt.Errorf("%w: finish time is required", ErrInvalidRun)
	}
	return nil
}

func validateAction(action service.ActionRecord) error {
	if action.ItemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidAction)
	}
	if !action.Kind.Remote() {
		return fmt.Errorf("%w: %q is not a store action", ErrInvalidAction, action.Kind)
	}
	if action.At.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidAction)
	}
	return nil
}
