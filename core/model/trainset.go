package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidTrainset is the sentinel wrapped by every InvalidTrainsetError.
var ErrInvalidTrainset = errors.New("invalid trainset")

// InvalidTrainsetError describes which field of a trainset record is malformed.
type InvalidTrainsetError struct {
	TrainsetID string
	Field      string
	Reason     string
}

func (e *InvalidTrainsetError) Error() string {
	id := e.TrainsetID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("invalid trainset %s: %s %s", id, e.Field, e.Reason)
}

func (e *InvalidTrainsetError) Unwrap() error { return ErrInvalidTrainset }

// FitnessCertificate is a time-bounded safety approval. A certificate is
// expired once its expiry date is at or before the evaluation time.
type FitnessCertificate struct {
	ID         string    `json:"id,omitempty" yaml:"id,omitempty"`
	Type       string    `json:"type,omitempty" yaml:"type,omitempty"`
	ExpiryDate time.Time `json:"expiry_date" yaml:"expiry_date"`
}

// Expired reports whether the certificate is no longer valid at now.
func (c FitnessCertificate) Expired(now time.Time) bool {
	return !c.ExpiryDate.After(now)
}

// JobCardStatus is the state of a maintenance work order.
type JobCardStatus string

const (
	JobCardOpen   JobCardStatus = "open"
	JobCardClosed JobCardStatus = "closed"
)

// JobCard is a maintenance work order.
type JobCard struct {
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
	Status   JobCardStatus `json:"status" yaml:"status"`
	Priority int           `json:"priority" yaml:"priority"`
}

// Open reports whether the job card still needs work.
func (j JobCard) Open() bool { return j.Status == JobCardOpen }

// Trainset is one physical rail unit.
//
// FitnessCertificates and JobCards are nil when the source system provides
// no certificate or job card data at all. A non-nil empty slice means the data
// is known and there is nothing to report.
type Trainset struct {
	ID                     string               `json:"id" yaml:"id"`
	Number                 string               `json:"number" yaml:"number"`
	Status                 Status               `json:"status" yaml:"status"`
	BayPosition            int                  `json:"bay_position" yaml:"bay_position"`
	Mileage                float64              `json:"mileage" yaml:"mileage"`
	LastCleaning           time.Time            `json:"last_cleaning" yaml:"last_cleaning"`
	BrandingPriority       int                  `json:"branding_priority" yaml:"branding_priority"`
	AvailabilityPercentage float64              `json:"availability_percentage" yaml:"availability_percentage"`
	FitnessCertificates    []FitnessCertificate `json:"fitness_certificates" yaml:"fitness_certificates,omitempty"`
	JobCards               []JobCard            `json:"job_cards" yaml:"job_cards,omitempty"`
}

// Validate checks the record invariants: a known status, finite mileage >= 0,
// availability within [0,100], branding priority within [1,10] and a
// recorded cleaning time.
func (t Trainset) Validate() error {
	invalid := func(field, reason string) error {
		return &InvalidTrainsetError{TrainsetID: t.ID, Field: field, Reason: reason}
	}
	if t.ID == "" {
		return invalid("id", "is required")
	}
	if !t.Status.Valid() {
		return invalid("status", fmt.Sprintf("%q is not a known status", t.Status))
	}
	if math.IsNaN(t.Mileage) || math.IsInf(t.Mileage, 0) {
		return invalid("mileage", "must be a finite number")
	}
	if t.Mileage < 0 {
		return invalid("mileage", "must not be negative")
	}
	if math.IsNaN(t.AvailabilityPercentage) || t.AvailabilityPercentage < 0 || t.AvailabilityPercentage > 100 {
		return invalid("availability_percentage", "must be within [0,100]")
	}
	if t.BrandingPriority < 1 || t.BrandingPriority > 10 {
		return invalid("branding_priority", "must be within [1,10]")
	}
	if t.LastCleaning.IsZero() {
		return invalid("last_cleaning", "is required")
	}
	return nil
}

// CertificateAware reports whether certificate or job card data was supplied
// for the trainset.
func (t Trainset) CertificateAware() bool {
	return t.FitnessCertificates != nil || t.JobCards != nil
}

// Clone returns a deep copy of t.
func (t Trainset) Clone() Trainset {
	cp := t
	if t.FitnessCertificates != nil {
		cp.FitnessCertificates = append([]FitnessCertificate{}, t.FitnessCertificates...)
	}
	if t.JobCards != nil {
		cp.JobCards = append([]JobCard{}, t.JobCards...)
	}
	return cp
}
