package subscription

import "errors"

var (
	ErrInvalidStatus    = errors.New("invalid subscription status")
	ErrInvalidSemester  = errors.New("invalid semester")
	ErrInvalidRoute     = errors.New("invalid route")
	ErrNotCancelled     = errors.New("subscription is not cancelled")
	ErrAlreadyCancelled = errors.New("subscription is already cancelled")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
