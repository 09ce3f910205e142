package trip

import "errors"

var (
	ErrInvalidKind      = errors.New("invalid trip kind")
	ErrInvalidStatus    = errors.New("invalid trip status")
	ErrInvalidDate      = errors.New("invalid trip date")
	ErrInvalidRoute     = errors.New("invalid route")
	ErrAlreadyCancelled = errors.New("trip is already cancelled")
)

// Kind distinguishes the two daily shuttle runs.
type Kind string

const (
	KindMorning Kind = "morning"
	KindEvening Kind = "evening"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindMorning, KindEvening:
		return true
	default:
		return false
	}
}

func NewKind(s string) (Kind, error) {
	kind := Kind(s)
	if !kind.IsValid() {
		return "", ErrInvalidKind
	}
	return kind, nil
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCancelled:
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
