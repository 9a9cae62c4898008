package model

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the operational state of a trainset.
type Status string

const (
	StatusReady       Status = "ready"
	StatusStandby     Status = "standby"
	StatusMaintenance Status = "maintenance"
	StatusCritical    Status = "critical"
)

// ErrInvalidStatus is returned when a status string is not one of the four
// known operational states.
var ErrInvalidStatus = errors.New("invalid trainset status")

// AllStatuses returns every status in display order.
func AllStatuses() []Status {
	return []Status{StatusReady, StatusStandby, StatusMaintenance, StatusCritical}
}

// ParseStatus converts s (case-insensitive) to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusStandby, StatusMaintenance, StatusCritical:
		return true
	}
	return false
}

// Serviceable reports whether a trainset in this status counts towards fleet
// serviceability.
func (s Status) Serviceable() bool {
	return s == StatusReady || s == StatusStandby
}

func (s Status) String() string { return string(s) }
