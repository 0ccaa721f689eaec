package estimator

import (
	"math"
	"sort"
	"time"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// ─── Learning-rate schedule ─────────────────────────────────────────────────

const (
	// alphaFloor is the minimum base learning rate: the profile never
	// stops adapting entirely.
	alphaFloor = 0.08
	// alphaScale decays the base rate as samples accumulate.
	alphaScale = 0.6

	// pullFloor / pullScale schedule the harmonization pull that keeps
	// unobserved boundaries consistent with the fresh duration estimate.
	pullFloor = 0.06
	pullScale = 0.45

	// betaFloor / betaScale schedule the exponentially-weighted variance
	// update for the observed boundary's sigma.
	betaFloor = 0.05
	betaScale = 0.4

	// minMargin is the hard minimum separation between consecutive
	// boundaries, in minutes.
	minMargin = 5

	// minTail is the shortest allowed stretch between wear-off start and
	// total duration when anchoring the duration during harmonization.
	minTail = 10

	// Onset hard bounds, in minutes.
	minOnset = 1
	maxOnset = 1440
)

// eventAlphaMult weights the learning rate by event type. Reports at the
// extremes of the curve (kicking in, worn off) pin the boundaries better
// than mid-curve impressions, so they get a little extra leverage.
func eventAlphaMult(s domain.EventStatus) float64 {
	switch s {
	case domain.StatusKickingIn:
		return 1.1
	case domain.StatusPeaking:
		return 0.9
	case domain.StatusWearingOff:
		return 0.9
	case domain.StatusWornOff:
		return 1.2
	default:
		return 0
	}
}

// ApplyEvent folds one feedback event into a profile and returns the
// revised profile. Pure: the input profile is never mutated. bucket is
// the day bucket the dose was taken in; its bias is subtracted from the
// event offset so the observation is comparable to the stored (unbiased)
// boundaries.
func ApplyEvent(p domain.EffectProfile, ev domain.EffectEvent, bucket domain.DayBucket, now time.Time) domain.EffectProfile {
	out := p.Clone()
	if len(out.TimeOfDayBias) == 0 {
		out.TimeOfDayBias = domain.ZeroBias()
	}
	if !ev.Status.Valid() {
		return out
	}

	// Corrupt sigmas would poison the variance update and the confidence
	// penalty below, so they get the same hygiene as the boundaries.
	out.SigmaOnset = sanitize(out.SigmaOnset)
	out.SigmaPeak = sanitize(out.SigmaPeak)
	out.SigmaWear = sanitize(out.SigmaWear)
	out.SigmaDuration = sanitize(out.SigmaDuration)

	samples := out.Samples
	alphaBase := math.Max(alphaFloor, alphaScale/float64(samples+1))
	observed := sanitize(ev.OffsetMinutes) - sanitize(out.BiasFor(bucket))

	// Blend the directly corresponding boundary toward the observation.
	evtAlpha := clampf(alphaBase*eventAlphaMult(ev.Status), 0, 1)
	switch ev.Status {
	case domain.StatusKickingIn:
		out.OnsetMinutes = blend(out.OnsetMinutes, observed, evtAlpha)
	case domain.StatusPeaking:
		out.PeakMinutes = blend(out.PeakMinutes, observed, evtAlpha)
	case domain.StatusWearingOff:
		out.WearOffStartMinutes = blend(out.WearOffStartMinutes, observed, evtAlpha)
	case domain.StatusWornOff:
		out.DurationMinutes = blend(out.DurationMinutes, observed, evtAlpha)
	}

	// A single observation at any phase also informs the total duration,
	// via the fixed phase-position ratios, at half the base rate.
	if durEst := impliedDuration(out, ev.Status, observed); durEst > 0 {
		out.DurationMinutes = blend(out.DurationMinutes, durEst, alphaBase/2)
	}

	harmonize(&out, ev.Status, samples)
	enforceOrdering(&out)
	updateSigma(&out, ev.Status, observed, samples)

	out.Samples = samples + 1
	varPenalty := math.Min(1, out.SigmaSum()/400)
	out.Confidence = math.Min(1, (0.2+float64(out.Samples)/10)*(1-0.5*varPenalty))

	roundBoundaries(&out)
	out.LastUpdated = now
	return out
}

// ApplyEvents folds a batch of events, sorted ascending by offset, as an
// explicit reduction. Order matters: each step's harmonization depends on
// the profile state left by the previous event, and ascending offsets
// minimize oscillation from out-of-order reports.
func ApplyEvents(p domain.EffectProfile, evs []domain.EffectEvent, bucket domain.DayBucket, now time.Time) domain.EffectProfile {
	sorted := make([]domain.EffectEvent, len(evs))
	copy(sorted, evs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OffsetMinutes < sorted[j].OffsetMinutes
	})

	out := p.Clone()
	for _, ev := range sorted {
		out = ApplyEvent(out, ev, bucket, now)
	}
	return out
}

// impliedDuration back-solves the total duration from an observed
// boundary using the fixed phase-position ratios. Returns 0 when no sane
// estimate can be derived.
func impliedDuration(p domain.EffectProfile, status domain.EventStatus, observed float64) float64 {
	var est float64
	switch status {
	case domain.StatusKickingIn:
		est = observed / onsetFrac
	case domain.StatusPeaking:
		est = p.OnsetMinutes + (observed-p.OnsetMinutes)/peakFrac
	case domain.StatusWearingOff:
		est = p.OnsetMinutes + (observed-p.OnsetMinutes)/wearFrac
	case domain.StatusWornOff:
		est = observed
	}
	if math.IsNaN(est) || math.IsInf(est, 0) || est <= 0 {
		return 0
	}
	return est
}

// harmonize pulls the boundaries not directly observed this round toward
// positions anchored by the freshly estimated duration and the fixed
// ratios, so no single boundary drifts inconsistently with the others.
func harmonize(p *domain.EffectProfile, status domain.EventStatus, samples int) {
	pull := math.Max(pullFloor, pullScale/float64(samples+1))

	if status != domain.StatusWornOff {
		// Keep at least a short tail after wear-off start before anchoring
		// the duration.
		anchor := math.Max(p.DurationMinutes, p.WearOffStartMinutes+minTail)
		p.DurationMinutes = blend(p.DurationMinutes, anchor, pull)
	}
	if status != domain.StatusKickingIn {
		p.OnsetMinutes = blend(p.OnsetMinutes, p.DurationMinutes*onsetFrac, pull)
	}
	span := p.DurationMinutes - p.OnsetMinutes
	if status != domain.StatusPeaking {
		p.PeakMinutes = blend(p.PeakMinutes, p.OnsetMinutes+span*peakFrac, pull)
	}
	if status != domain.StatusWearingOff {
		p.WearOffStartMinutes = blend(p.WearOffStartMinutes, p.OnsetMinutes+span*wearFrac, pull)
	}
}

// updateSigma applies the exponentially-weighted variance update to the
// sigma of the boundary actually observed this event.
func updateSigma(p *domain.EffectProfile, status domain.EventStatus, observed float64, samples int) {
	beta := math.Max(betaFloor, betaScale/float64(samples+1))

	var sigma *float64
	var current float64
	switch status {
	case domain.StatusKickingIn:
		sigma, current = &p.SigmaOnset, p.OnsetMinutes
	case domain.StatusPeaking:
		sigma, current = &p.SigmaPeak, p.PeakMinutes
	case domain.StatusWearingOff:
		sigma, current = &p.SigmaWear, p.WearOffStartMinutes
	case domain.StatusWornOff:
		sigma, current = &p.SigmaDuration, p.DurationMinutes
	default:
		return
	}

	errVal := observed - current
	*sigma = math.Sqrt((1-beta)*(*sigma)*(*sigma) + beta*errVal*errVal)
}

// enforceOrdering applies the hard constraints: onset within [1, 1440]
// and each boundary at least minMargin after the previous one.
func enforceOrdering(p *domain.EffectProfile) {
	p.OnsetMinutes = clampf(sanitize(p.OnsetMinutes), minOnset, maxOnset)
	p.PeakMinutes = math.Max(sanitize(p.PeakMinutes), p.OnsetMinutes+minMargin)
	p.WearOffStartMinutes = math.Max(sanitize(p.WearOffStartMinutes), p.PeakMinutes+minMargin)
	p.DurationMinutes = math.Max(sanitize(p.DurationMinutes), p.WearOffStartMinutes+minMargin)
}

// roundBoundaries rounds all boundary minutes to integers, then
// re-applies ordering so rounding can never shave a margin below the
// minimum.
func roundBoundaries(p *domain.EffectProfile) {
	p.OnsetMinutes = math.Round(p.OnsetMinutes)
	p.PeakMinutes = math.Round(p.PeakMinutes)
	p.WearOffStartMinutes = math.Round(p.WearOffStartMinutes)
	p.DurationMinutes = math.Round(p.DurationMinutes)
	enforceOrdering(p)
}

// blend moves old toward target by factor alpha.
func blend(old, target, alpha float64) float64 {
	return old*(1-alpha) + target*alpha
}
