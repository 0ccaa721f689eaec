package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The estimator core
// itself never fails (it always produces a usable profile); these cover the
// service layer around it.

var (
	// Store lookups
	ErrSubstanceNotFound = errors.New("substance not found")
	ErrSubstanceExists   = errors.New("substance already exists")
	ErrDoseNotFound      = errors.New("dose not found")
	ErrProfileNotFound   = errors.New("profile not found")

	// Input validation
	ErrInvalidStatus   = errors.New("invalid feedback status")
	ErrInvalidCategory = errors.New("unknown substance category")
	ErrNegativeOffset  = errors.New("feedback offset must be non-negative")
)
