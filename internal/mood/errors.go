package mood

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse     = errors.New("recommendation service returned no content")
	ErrMalformedResponse = errors.New("recommendation service returned malformed content")
)

// ServiceError is a non-2xx answer, or a transport failure when Status is 0.
type ServiceError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("recommendation service unreachable: %s", e.Message)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
