package estimator

import (
	"math"
	"strings"
	"time"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// ─── Phase-position ratios ──────────────────────────────────────────────────
// Fixed anatomy of an effect curve, used both to derive the inner
// boundaries of a fresh baseline and to let a single observation at any
// phase inform the overall duration estimate.

const (
	// onsetFrac is the onset position as a fraction of total duration.
	onsetFrac = 0.15
	// peakFrac is the peak position within the post-onset span.
	peakFrac = 1.0 / 3
	// wearFrac is the wear-off start within the post-onset span.
	wearFrac = 0.75
)

// Initial per-boundary uncertainty for a freshly resolved baseline.
const (
	initSigmaOnset    = 10
	initSigmaPeak     = 15
	initSigmaWear     = 20
	initSigmaDuration = 25
)

// Baseline confidence by source.
const (
	confidenceMined    = 0.4
	confidenceFallback = 0.25
)

// FindReference locates the reference entry matching a substance name:
// exact match first, then substring containment in either direction, then
// alias / generic-name containment. Returns nil when nothing matches.
func FindReference(entries []domain.ReferenceEntry, name string) *domain.ReferenceEntry {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	for i := range entries {
		if strings.ToLower(entries[i].Name) == needle {
			return &entries[i]
		}
	}
	for i := range entries {
		entryName := strings.ToLower(entries[i].Name)
		if strings.Contains(entryName, needle) || strings.Contains(needle, entryName) {
			return &entries[i]
		}
	}
	for i := range entries {
		if generic := strings.ToLower(entries[i].GenericName); generic != "" &&
			(strings.Contains(generic, needle) || strings.Contains(needle, generic)) {
			return &entries[i]
		}
		for _, alias := range entries[i].Aliases {
			a := strings.ToLower(alias)
			if a == "" {
				continue
			}
			if strings.Contains(a, needle) || strings.Contains(needle, a) {
				return &entries[i]
			}
		}
	}
	return nil
}

// BaselineSource names which branch of the priority chain produced a
// baseline profile.
type BaselineSource string

const (
	SourceReference BaselineSource = "reference"
	SourceLearned   BaselineSource = "learned"
	SourceFallback  BaselineSource = "fallback"
)

// ResolveBaseline produces a complete, invariant-respecting profile for a
// substance with no prior learned data. Priority: mined reference text,
// then a caller-supplied learned category profile, then the static
// category defaults table. Never fails — every path yields a usable
// profile.
func ResolveBaseline(sub domain.Substance, ref *domain.ReferenceEntry, learned *domain.EffectProfile, now time.Time) domain.EffectProfile {
	p, _ := ResolveBaselineWithSource(sub, ref, learned, now)
	return p
}

// ResolveBaselineWithSource is ResolveBaseline plus the source label, for
// callers that report which branch fired.
func ResolveBaselineWithSource(sub domain.Substance, ref *domain.ReferenceEntry, learned *domain.EffectProfile, now time.Time) (domain.EffectProfile, BaselineSource) {
	if ref != nil {
		if mined := Mine(ref.Description); mined != nil && minedPlausible(mined) {
			return buildProfile(sub, mined.OnsetMinutes, mined.TotalMinutes, confidenceMined, 0, now), SourceReference
		}
	}

	if learned != nil {
		return buildProfile(sub, learned.OnsetMinutes, learned.DurationMinutes, learned.Confidence, learned.Samples, now), SourceLearned
	}

	def := domain.ResolveDefault(sub.DependencyCategory, sub.Category)
	return buildProfile(sub, def.OnsetMinutes, def.DurationMinutes, confidenceFallback, 0, now), SourceFallback
}

// minedPlausible applies the sanity gates to mined durations. Implausible
// values are silently replaced by category fallback — a policy decision,
// not an error.
func minedPlausible(m *MinedDurations) bool {
	onset := sanitize(m.OnsetMinutes)
	total := sanitize(m.TotalMinutes)
	switch {
	case total <= onset+15:
		return false
	case onset > maxf(120, total*0.8):
		return false
	case total < 30:
		return false
	}
	return true
}

// buildProfile derives the inner boundaries from an onset/duration pair
// via the fixed ratios and initializes uncertainty and bias.
func buildProfile(sub domain.Substance, onset, duration, confidence float64, samples int, now time.Time) domain.EffectProfile {
	onset = sanitize(onset)
	duration = sanitize(duration)

	span := duration - onset
	p := domain.EffectProfile{
		SubstanceID:         sub.ID,
		SubstanceName:       sub.Name,
		OnsetMinutes:        onset,
		PeakMinutes:         onset + span*peakFrac,
		WearOffStartMinutes: onset + span*wearFrac,
		DurationMinutes:     duration,
		Confidence:          clampf(sanitize(confidence), 0, 1),
		Samples:             samples,
		SigmaOnset:          initSigmaOnset,
		SigmaPeak:           initSigmaPeak,
		SigmaWear:           initSigmaWear,
		SigmaDuration:       initSigmaDuration,
		TimeOfDayBias:       domain.ZeroBias(),
		AutoStopOnWearOff:   sub.AutoStopOnWearOff,
		LastUpdated:         now,
	}
	enforceOrdering(&p)
	roundBoundaries(&p)
	return p
}

// ─── Numeric hygiene ────────────────────────────────────────────────────────

// sanitize maps NaN and infinities to 0 so corrupt inputs cannot reach
// the smoothing equations.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clampf restricts v between lo and hi.
func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
