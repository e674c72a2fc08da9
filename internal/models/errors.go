package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAcquisition marks a source that was unreachable or returned unusable data.
	ErrAcquisition = errors.New("acquisition failure")
	// ErrExtractionAmbiguity marks a text blob without usable numeric candidates.
	ErrExtractionAmbiguity = errors.New("extraction ambiguity")
	// ErrPersistenceConflict marks a write-time integrity violation.
	ErrPersistenceConflict = errors.New("persistence conflict")
	// ErrReportGeneration marks a failed optional report call.
	ErrReportGeneration = errors.New("report generation failure")
	ErrNotFound         = errors.New("profile not found")
)

var (
	ErrEmptyUsername   = fmt.Errorf("%w: empty username", ErrPersistenceConflict)
	ErrNegativeCounter = fmt.Errorf("%w: negative counter", ErrPersistenceConflict)
	ErrEngagementRange = fmt.Errorf("%w: engagement rate out of [0,1]", ErrPersistenceConflict)
	ErrTimestampOrder  = fmt.Errorf("%w: updated_at before created_at", ErrPersistenceConflict)
	ErrUsernameChanged = fmt.Errorf("%w: username is immutable", ErrPersistenceConflict)
)
