// Package domain holds the pure types of the dosewatch estimator.
// Nothing in here touches storage, transport, or the clock — the
// estimator core and the infra layers both depend on this package,
// never the other way around.
package domain

import "time"

// ─── Phases ─────────────────────────────────────────────────────────────────

// Phase is the discrete stage of a dose's pharmacological effect.
// Normal time flow only moves forward: pre_onset → kicking_in →
// peaking → wearing_off → worn_off (terminal).
type Phase string

const (
	PhasePreOnset   Phase = "pre_onset"
	PhaseKickingIn  Phase = "kicking_in"
	PhasePeaking    Phase = "peaking"
	PhaseWearingOff Phase = "wearing_off"
	PhaseWornOff    Phase = "worn_off"
)

// PhasePrediction is the Phase Predictor's output: a phase label plus a
// global progress fraction (elapsed/duration clamped to [0,1]).
type PhasePrediction struct {
	Phase    Phase   `json:"phase"`
	Progress float64 `json:"progress"`
}

// ─── Day buckets ────────────────────────────────────────────────────────────

// DayBucket is the time-of-day slot a dose was taken in. The profile keeps
// a signed minute bias per bucket, applied uniformly to all boundaries.
type DayBucket string

const (
	BucketMorning   DayBucket = "morning"   // 06–12
	BucketAfternoon DayBucket = "afternoon" // 12–18
	BucketEvening   DayBucket = "evening"   // 18–24
	BucketNight     DayBucket = "night"     // 00–06
)

// DayBuckets lists all buckets in day order, starting at midnight.
var DayBuckets = []DayBucket{BucketNight, BucketMorning, BucketAfternoon, BucketEvening}

// BucketForHour maps a local hour (0–23) to its day bucket.
func BucketForHour(hour int) DayBucket {
	switch {
	case hour >= 6 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 18:
		return BucketAfternoon
	case hour >= 18 && hour < 24:
		return BucketEvening
	default:
		return BucketNight
	}
}

// BucketForTime maps a timestamp to its local-hour day bucket.
func BucketForTime(t time.Time) DayBucket {
	return BucketForHour(t.Hour())
}

// ─── Effect profile ─────────────────────────────────────────────────────────

// EffectProfile is the learned timing model for one substance: four ordered
// boundary estimates in minutes since dose, per-boundary uncertainty, and a
// time-of-day bias map.
//
// Invariant: 1 ≤ OnsetMinutes, and each boundary is at least 5 minutes
// after the previous one (onset < peak < wearOffStart < duration).
type EffectProfile struct {
	SubstanceID   string `json:"substance_id"`
	SubstanceName string `json:"substance_name"`

	// Boundary estimates, minutes since dose. Stored rounded to integers.
	OnsetMinutes        float64 `json:"onset_minutes"`
	PeakMinutes         float64 `json:"peak_minutes"`
	WearOffStartMinutes float64 `json:"wear_off_start_minutes"`
	DurationMinutes     float64 `json:"duration_minutes"`

	// Confidence in [0,1]: rises with Samples, tempered by the sigmas.
	Confidence float64 `json:"confidence"`

	// Samples counts feedback events folded in so far. Monotonic.
	Samples int `json:"samples"`

	// Per-boundary RMS uncertainty, in minutes.
	SigmaOnset    float64 `json:"sigma_onset"`
	SigmaPeak     float64 `json:"sigma_peak"`
	SigmaWear     float64 `json:"sigma_wear"`
	SigmaDuration float64 `json:"sigma_duration"`

	// TimeOfDayBias is a signed minute offset per day bucket, applied
	// uniformly to all four boundaries at prediction time.
	TimeOfDayBias map[DayBucket]float64 `json:"time_of_day_bias"`

	// AutoStopOnWearOff is consumed by the calling application (stop
	// reminders once wearing off). The estimator never mutates it.
	AutoStopOnWearOff bool `json:"auto_stop_on_wear_off"`

	LastUpdated time.Time `json:"last_updated"`
}

// Clone returns a deep copy. The updater works on clones so its inputs
// stay immutable.
func (p EffectProfile) Clone() EffectProfile {
	out := p
	out.TimeOfDayBias = make(map[DayBucket]float64, len(p.TimeOfDayBias))
	for k, v := range p.TimeOfDayBias {
		out.TimeOfDayBias[k] = v
	}
	return out
}

// BiasFor returns the bias for a bucket, zero when the map is nil or the
// bucket has no entry.
func (p EffectProfile) BiasFor(b DayBucket) float64 {
	if p.TimeOfDayBias == nil {
		return 0
	}
	return p.TimeOfDayBias[b]
}

// ZeroBias returns a bias map with all four buckets set to zero.
func ZeroBias() map[DayBucket]float64 {
	return map[DayBucket]float64{
		BucketMorning:   0,
		BucketAfternoon: 0,
		BucketEvening:   0,
		BucketNight:     0,
	}
}

// SigmaSum returns the accumulated uncertainty across all boundaries.
func (p EffectProfile) SigmaSum() float64 {
	return p.SigmaOnset + p.SigmaPeak + p.SigmaWear + p.SigmaDuration
}
