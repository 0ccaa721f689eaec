package estimator

import (
	"math"
	"testing"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Single-event folds
// ═══════════════════════════════════════════════════════════════════════════

func TestApplyEventWornOffMovesDuration(t *testing.T) {
	p := opioidProfile() // duration 300, confidence 0.25
	ev := domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 400}

	out := ApplyEvent(p, ev, domain.BucketMorning, fixedTime())

	if out.DurationMinutes <= 300 || out.DurationMinutes >= 400 {
		t.Fatalf("expected duration pulled toward 400, got %f", out.DurationMinutes)
	}
	if out.Samples != 1 {
		t.Fatalf("expected 1 sample, got %d", out.Samples)
	}
	if out.Confidence <= 0.25 {
		t.Fatalf("expected confidence above 0.25, got %f", out.Confidence)
	}
	assertOrdered(t, out)
}

func TestApplyEventWornOffExactValues(t *testing.T) {
	// First sample: alphaBase 0.6, worn_off multiplier 1.2 → evtAlpha 0.72.
	// 300×0.28 + 400×0.72 = 372, then the half-rate duration re-estimate
	// pulls to 372×0.7 + 400×0.3 = 380.4 → rounds to 380.
	p := opioidProfile()
	ev := domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 400}

	out := ApplyEvent(p, ev, domain.BucketMorning, fixedTime())

	if out.DurationMinutes != 380 {
		t.Fatalf("expected duration 380, got %f", out.DurationMinutes)
	}
	// Sigma for the observed boundary shrinks: the 19.6-minute error is
	// below the initial 25-minute uncertainty.
	if out.SigmaDuration >= 25 {
		t.Fatalf("expected sigma_duration below 25, got %f", out.SigmaDuration)
	}
	if math.Abs(out.Confidence-0.2745) > 0.005 {
		t.Fatalf("expected confidence ≈0.2745, got %f", out.Confidence)
	}
}

func TestApplyEventKickingInMovesOnset(t *testing.T) {
	p := opioidProfile() // onset 20
	ev := domain.EffectEvent{Status: domain.StatusKickingIn, OffsetMinutes: 45}

	out := ApplyEvent(p, ev, domain.BucketMorning, fixedTime())

	if out.OnsetMinutes <= 20 || out.OnsetMinutes >= 45 {
		t.Fatalf("expected onset between 20 and 45, got %f", out.OnsetMinutes)
	}
	// A kicking_in report at 45 implies a much longer experience; the
	// duration estimate should not shrink.
	if out.DurationMinutes < 300 {
		t.Fatalf("expected duration at least 300, got %f", out.DurationMinutes)
	}
	assertOrdered(t, out)
}

func TestApplyEventDoesNotMutateInput(t *testing.T) {
	p := opioidProfile()
	before := p.Clone()

	_ = ApplyEvent(p, domain.EffectEvent{Status: domain.StatusPeaking, OffsetMinutes: 90}, domain.BucketNight, fixedTime())

	if p.OnsetMinutes != before.OnsetMinutes || p.PeakMinutes != before.PeakMinutes ||
		p.DurationMinutes != before.DurationMinutes || p.Samples != before.Samples ||
		p.Confidence != before.Confidence {
		t.Fatalf("input profile mutated: %+v vs %+v", p, before)
	}
	for b, v := range before.TimeOfDayBias {
		if p.TimeOfDayBias[b] != v {
			t.Fatalf("bias map mutated for %s", b)
		}
	}
}

func TestApplyEventBiasSubtracted(t *testing.T) {
	p := opioidProfile()
	p.TimeOfDayBias[domain.BucketEvening] = 30

	ev := domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 400}
	biased := ApplyEvent(p, ev, domain.BucketEvening, fixedTime())
	unbiased := ApplyEvent(opioidProfile(), ev, domain.BucketEvening, fixedTime())

	// A +30 evening bias means the raw offset overstates the unbiased
	// boundary by 30, so the biased fold lands lower.
	if biased.DurationMinutes >= unbiased.DurationMinutes {
		t.Fatalf("expected bias-corrected duration below %f, got %f",
			unbiased.DurationMinutes, biased.DurationMinutes)
	}
}

func TestApplyEventInvalidStatusNoop(t *testing.T) {
	p := opioidProfile()
	out := ApplyEvent(p, domain.EffectEvent{Status: "confused", OffsetMinutes: 100}, domain.BucketMorning, fixedTime())

	if out.Samples != p.Samples || out.DurationMinutes != p.DurationMinutes {
		t.Fatalf("expected unchanged profile for invalid status, got %+v", out)
	}
}

func TestApplyEventSanitizesCorruptOffset(t *testing.T) {
	p := opioidProfile()
	for _, offset := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		out := ApplyEvent(p, domain.EffectEvent{Status: domain.StatusPeaking, OffsetMinutes: offset}, domain.BucketMorning, fixedTime())
		if math.IsNaN(out.PeakMinutes) || math.IsInf(out.PeakMinutes, 0) {
			t.Fatalf("corrupt offset %f leaked into peak: %f", offset, out.PeakMinutes)
		}
		assertOrdered(t, out)
	}
}

func TestApplyEventSanitizesCorruptSigmas(t *testing.T) {
	p := opioidProfile()
	p.SigmaOnset = math.NaN()
	p.SigmaDuration = math.Inf(1)

	out := ApplyEvent(p, domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 350}, domain.BucketMorning, fixedTime())

	for name, v := range map[string]float64{
		"sigma_onset":    out.SigmaOnset,
		"sigma_peak":     out.SigmaPeak,
		"sigma_wear":     out.SigmaWear,
		"sigma_duration": out.SigmaDuration,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s not sanitized: %f", name, v)
		}
	}
	if math.IsNaN(out.Confidence) || out.Confidence < 0 || out.Confidence > 1 {
		t.Fatalf("expected confidence in [0,1], got %f", out.Confidence)
	}
}

func TestApplyEventSamplesMonotonic(t *testing.T) {
	p := opioidProfile()
	for i := 1; i <= 10; i++ {
		p = ApplyEvent(p, domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 310}, domain.BucketMorning, fixedTime())
		if p.Samples != i {
			t.Fatalf("expected %d samples, got %d", i, p.Samples)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Fatalf("confidence %f out of [0,1]", p.Confidence)
		}
		assertOrdered(t, p)
	}
}

func TestApplyEventLearningRateDecays(t *testing.T) {
	// The same surprising observation moves a seasoned profile less than
	// a fresh one.
	fresh := opioidProfile()
	seasoned := opioidProfile()
	seasoned.Samples = 20

	ev := domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 500}
	freshOut := ApplyEvent(fresh, ev, domain.BucketMorning, fixedTime())
	seasonedOut := ApplyEvent(seasoned, ev, domain.BucketMorning, fixedTime())

	freshMove := math.Abs(freshOut.DurationMinutes - 300)
	seasonedMove := math.Abs(seasonedOut.DurationMinutes - 300)
	if seasonedMove >= freshMove {
		t.Fatalf("expected smaller move for seasoned profile: %f vs %f", seasonedMove, freshMove)
	}
}

func TestApplyEventConsistentFeedbackShrinksSigma(t *testing.T) {
	p := opioidProfile()
	for i := 0; i < 8; i++ {
		p = ApplyEvent(p, domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: p.DurationMinutes}, domain.BucketMorning, fixedTime())
	}
	if p.SigmaDuration >= 25 {
		t.Fatalf("expected sigma_duration to shrink under agreeing feedback, got %f", p.SigmaDuration)
	}
	if p.Confidence <= 0.4 {
		t.Fatalf("expected confidence to climb, got %f", p.Confidence)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Batch folds
// ═══════════════════════════════════════════════════════════════════════════

func TestApplyEventsSortsByOffset(t *testing.T) {
	p := opioidProfile()
	shuffled := []domain.EffectEvent{
		{Status: domain.StatusWornOff, OffsetMinutes: 320},
		{Status: domain.StatusKickingIn, OffsetMinutes: 25},
		{Status: domain.StatusPeaking, OffsetMinutes: 120},
	}
	ordered := []domain.EffectEvent{
		{Status: domain.StatusKickingIn, OffsetMinutes: 25},
		{Status: domain.StatusPeaking, OffsetMinutes: 120},
		{Status: domain.StatusWornOff, OffsetMinutes: 320},
	}

	a := ApplyEvents(p, shuffled, domain.BucketMorning, fixedTime())
	b := ApplyEvents(p, ordered, domain.BucketMorning, fixedTime())

	if a.OnsetMinutes != b.OnsetMinutes || a.PeakMinutes != b.PeakMinutes ||
		a.WearOffStartMinutes != b.WearOffStartMinutes || a.DurationMinutes != b.DurationMinutes {
		t.Fatalf("shuffled and ordered folds diverged: %+v vs %+v", a, b)
	}
	if a.Samples != 3 {
		t.Fatalf("expected 3 samples, got %d", a.Samples)
	}
	assertOrdered(t, a)
}

func TestApplyEventsEmptyBatch(t *testing.T) {
	p := opioidProfile()
	out := ApplyEvents(p, nil, domain.BucketMorning, fixedTime())
	if out.Samples != 0 || out.DurationMinutes != p.DurationMinutes {
		t.Fatalf("expected unchanged profile for empty batch, got %+v", out)
	}
}

func TestApplyEventsDoesNotReorderCallerSlice(t *testing.T) {
	p := opioidProfile()
	evs := []domain.EffectEvent{
		{Status: domain.StatusWornOff, OffsetMinutes: 320},
		{Status: domain.StatusKickingIn, OffsetMinutes: 25},
	}
	_ = ApplyEvents(p, evs, domain.BucketMorning, fixedTime())

	if evs[0].OffsetMinutes != 320 || evs[1].OffsetMinutes != 25 {
		t.Fatalf("caller slice reordered: %+v", evs)
	}
}

func TestApplyEventsConvergesTowardReports(t *testing.T) {
	// A user who consistently reports wearing off later than the default
	// should drag the 5-hour opioid baseline upward over a few doses. The
	// early kicking_in reports imply a shorter curve, so the estimate
	// settles between the two signals rather than at the raw worn_off
	// offset.
	p := opioidProfile()
	for dose := 0; dose < 5; dose++ {
		p = ApplyEvents(p, []domain.EffectEvent{
			{Status: domain.StatusKickingIn, OffsetMinutes: 30},
			{Status: domain.StatusPeaking, OffsetMinutes: 120},
			{Status: domain.StatusWornOff, OffsetMinutes: 360},
		}, domain.BucketMorning, fixedTime())
	}

	if p.DurationMinutes <= 300 || p.DurationMinutes >= 360 {
		t.Fatalf("expected duration between 300 and 360, got %f", p.DurationMinutes)
	}
	if p.Samples != 15 {
		t.Fatalf("expected 15 samples, got %d", p.Samples)
	}
	assertOrdered(t, p)
}

// ═══════════════════════════════════════════════════════════════════════════
// Confidence behavior
// ═══════════════════════════════════════════════════════════════════════════

func TestConfidenceCappedByDisagreement(t *testing.T) {
	// Wildly alternating worn_off reports keep the sigmas high, which
	// caps confidence even as samples accumulate.
	noisy := opioidProfile()
	steady := opioidProfile()
	offsets := []float64{100, 700, 120, 650, 90, 720}
	for _, off := range offsets {
		noisy = ApplyEvent(noisy, domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: off}, domain.BucketMorning, fixedTime())
		steady = ApplyEvent(steady, domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: 310}, domain.BucketMorning, fixedTime())
	}

	if noisy.Confidence >= steady.Confidence {
		t.Fatalf("expected noisy feedback to cap confidence: noisy %f, steady %f",
			noisy.Confidence, steady.Confidence)
	}
}

func TestConfidenceNeverExceedsOne(t *testing.T) {
	p := opioidProfile()
	for i := 0; i < 50; i++ {
		p = ApplyEvent(p, domain.EffectEvent{Status: domain.StatusWornOff, OffsetMinutes: p.DurationMinutes}, domain.BucketMorning, fixedTime())
	}
	if p.Confidence > 1 {
		t.Fatalf("confidence %f exceeds 1", p.Confidence)
	}
}
