// Package estimator implements the adaptive effect-phase estimator.
//
// For a given dose of a substance it predicts which pharmacological phase
// the dose is in (pre_onset, kicking_in, peaking, wearing_off, worn_off)
// and continuously refines the per-substance timing profile from
// user-reported feedback:
//
//	reference text / category defaults → baseline profile
//	feedback events → bounded adaptive smoothing → revised profile
//	profile + elapsed minutes → phase + progress
//
// Everything in this package is a pure transformation over in-memory
// values: no I/O, no ambient clock reads. The Estimator facade carries an
// injectable clock so callers get the convenience methods without giving
// up testability.
package estimator

import (
	"time"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// Estimator binds the pure estimation functions to a clock. Concurrent use
// is safe as long as each profile value is updated from one goroutine at a
// time — the functions never mutate their inputs.
type Estimator struct {
	// Injectable clock
	Now func() time.Time
}

// New creates an Estimator using the system clock.
func New() *Estimator {
	return &Estimator{Now: time.Now}
}

// ResolveBaseline produces a starting profile for a substance, looking up
// the best-matching reference entry in entries. learned, when non-nil, is
// a previously learned category-level profile supplied by the caller.
func (e *Estimator) ResolveBaseline(sub domain.Substance, entries []domain.ReferenceEntry, learned *domain.EffectProfile) domain.EffectProfile {
	return ResolveBaseline(sub, FindReference(entries, sub.Name), learned, e.Now())
}

// PredictPhase maps elapsed minutes since dose to a phase and progress
// fraction, using the bias bucket of the current local hour.
func (e *Estimator) PredictPhase(p domain.EffectProfile, elapsedMinutes float64) domain.PhasePrediction {
	return PredictAt(p, elapsedMinutes, domain.BucketForTime(e.Now()))
}

// PredictPhaseForDose predicts the current phase of a dose. The bias
// bucket comes from when the dose was taken, not from the current hour.
func (e *Estimator) PredictPhaseForDose(p domain.EffectProfile, dose domain.Dose) domain.PhasePrediction {
	return PredictAt(p, dose.ElapsedMinutes(e.Now()), dose.Bucket())
}

// UpdateFromEvent folds one feedback event into the profile. bucket is the
// day bucket the dose was taken in.
func (e *Estimator) UpdateFromEvent(p domain.EffectProfile, ev domain.EffectEvent, bucket domain.DayBucket) domain.EffectProfile {
	return ApplyEvent(p, ev, bucket, e.Now())
}

// UpdateFromEvents folds a batch of feedback events into the profile,
// sorted ascending by offset.
func (e *Estimator) UpdateFromEvents(p domain.EffectProfile, evs []domain.EffectEvent, bucket domain.DayBucket) domain.EffectProfile {
	return ApplyEvents(p, evs, bucket, e.Now())
}
