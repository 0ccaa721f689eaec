package estimator

import "github.com/dosewatch/dosewatch/internal/domain"

// PredictAt maps elapsed minutes since dose (clamped ≥ 0) to a phase and
// a progress fraction in [0,1], applying the time-of-day bias for the
// given bucket as a uniform shift to all four boundaries. Progress is a
// global measure (elapsed over total duration), not phase-local.
func PredictAt(p domain.EffectProfile, elapsedMinutes float64, bucket domain.DayBucket) domain.PhasePrediction {
	elapsed := sanitize(elapsedMinutes)
	if elapsed < 0 {
		elapsed = 0
	}

	bias := sanitize(p.BiasFor(bucket))
	onset := sanitize(p.OnsetMinutes) + bias
	peak := sanitize(p.PeakMinutes) + bias
	wear := sanitize(p.WearOffStartMinutes) + bias
	duration := sanitize(p.DurationMinutes) + bias

	// Re-clamp after the shift: each boundary stays strictly past the
	// previous one even when the bias squashes the curve.
	if onset < 1 {
		onset = 1
	}
	if peak < onset+1 {
		peak = onset + 1
	}
	if wear < peak+1 {
		wear = peak + 1
	}
	if duration < wear+1 {
		duration = wear + 1
	}

	var phase domain.Phase
	switch {
	case elapsed < onset:
		phase = domain.PhasePreOnset
	case elapsed < peak:
		phase = domain.PhaseKickingIn
	case elapsed < wear:
		phase = domain.PhasePeaking
	case elapsed < duration:
		phase = domain.PhaseWearingOff
	default:
		phase = domain.PhaseWornOff
	}

	return domain.PhasePrediction{
		Phase:    phase,
		Progress: clampf(elapsed/duration, 0, 1),
	}
}
