package ai

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is wrapped in a ServiceError when the model returns no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ServiceError reports that the generation service failed for a task.
type ServiceError struct {
	Task Task
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service failed for %s: %v", e.Task, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceError reports whether err came from the generation service.
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}
