package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/rfidgate/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTime        = errors.New("time parameter cannot be zero")
	ErrInvalidAccessEvent = errors.New("invalid access event")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateAccessEvent(event *model.AccessEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if strings.TrimSpace(event.Identifier) == "" {
		return fmt.Errorf("%w: missing identifier", ErrInvalidAccessEvent)
	}
	if strings.TrimSpace(event.Verdict) == "" {
		return fmt.Errorf("%w: missing verdict", ErrInvalidAccessEvent)
	}
	return nil
}
