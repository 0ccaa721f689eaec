package estimator

import (
	"math"
	"testing"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// opioidProfile is the Scenario-C style baseline used across predictor
// and updater tests: onset 20, peak 113, wearOff 230, duration 300.
func opioidProfile() domain.EffectProfile {
	return ResolveBaseline(opioidSubstance(), nil, nil, fixedTime())
}

func TestPredictAtZeroElapsed(t *testing.T) {
	pred := PredictAt(opioidProfile(), 0, domain.BucketMorning)
	if pred.Phase != domain.PhasePreOnset {
		t.Fatalf("expected pre_onset at 0 elapsed, got %s", pred.Phase)
	}
	if pred.Progress != 0 {
		t.Fatalf("expected progress 0, got %f", pred.Progress)
	}
}

func TestPredictAtPhaseIntervals(t *testing.T) {
	p := opioidProfile()
	cases := []struct {
		elapsed float64
		want    domain.Phase
	}{
		{5, domain.PhasePreOnset},
		{20, domain.PhaseKickingIn},
		{60, domain.PhaseKickingIn},
		{113, domain.PhasePeaking},
		{200, domain.PhasePeaking},
		{230, domain.PhaseWearingOff},
		{299, domain.PhaseWearingOff},
		{300, domain.PhaseWornOff},
		{1000, domain.PhaseWornOff},
	}
	for _, c := range cases {
		pred := PredictAt(p, c.elapsed, domain.BucketMorning)
		if pred.Phase != c.want {
			t.Fatalf("elapsed %f: expected %s, got %s", c.elapsed, c.want, pred.Phase)
		}
	}
}

func TestPredictAtWornOffProgress(t *testing.T) {
	p := opioidProfile()
	pred := PredictAt(p, p.DurationMinutes, domain.BucketMorning)
	if pred.Phase != domain.PhaseWornOff {
		t.Fatalf("expected worn_off at duration, got %s", pred.Phase)
	}
	if pred.Progress != 1 {
		t.Fatalf("expected progress 1, got %f", pred.Progress)
	}
}

func TestPredictAtProgressBounds(t *testing.T) {
	p := opioidProfile()
	for _, elapsed := range []float64{0, 1, 50, 150, 299, 300, 10000, -5, math.NaN()} {
		pred := PredictAt(p, elapsed, domain.BucketNight)
		if pred.Progress < 0 || pred.Progress > 1 {
			t.Fatalf("elapsed %f: progress %f out of [0,1]", elapsed, pred.Progress)
		}
	}
}

func TestPredictAtNegativeElapsedClamped(t *testing.T) {
	pred := PredictAt(opioidProfile(), -30, domain.BucketMorning)
	if pred.Phase != domain.PhasePreOnset || pred.Progress != 0 {
		t.Fatalf("expected pre_onset/0 for negative elapsed, got %s/%f", pred.Phase, pred.Progress)
	}
}

func TestPredictAtBiasShiftsBoundaries(t *testing.T) {
	p := opioidProfile()
	p.TimeOfDayBias[domain.BucketEvening] = -15

	// Unbiased: elapsed 10 is still pre_onset (onset 20). With a -15
	// evening bias, onset shifts to 5, so 10 is already kicking in.
	if pred := PredictAt(p, 10, domain.BucketMorning); pred.Phase != domain.PhasePreOnset {
		t.Fatalf("expected pre_onset without bias, got %s", pred.Phase)
	}
	if pred := PredictAt(p, 10, domain.BucketEvening); pred.Phase != domain.PhaseKickingIn {
		t.Fatalf("expected kicking_in with -15 bias, got %s", pred.Phase)
	}
}

func TestPredictAtExtremeBiasStaysOrdered(t *testing.T) {
	p := opioidProfile()
	p.TimeOfDayBias[domain.BucketNight] = -5000

	// The shifted boundaries are re-clamped strictly increasing, so every
	// elapsed value still lands in a well-defined phase.
	pred := PredictAt(p, 2, domain.BucketNight)
	if pred.Phase == "" {
		t.Fatal("expected a phase despite extreme bias")
	}
	if pred.Progress < 0 || pred.Progress > 1 {
		t.Fatalf("progress %f out of [0,1]", pred.Progress)
	}
}

func TestBucketForHour(t *testing.T) {
	cases := []struct {
		hour int
		want domain.DayBucket
	}{
		{0, domain.BucketNight},
		{5, domain.BucketNight},
		{6, domain.BucketMorning},
		{11, domain.BucketMorning},
		{12, domain.BucketAfternoon},
		{17, domain.BucketAfternoon},
		{18, domain.BucketEvening},
		{23, domain.BucketEvening},
	}
	for _, c := range cases {
		if got := domain.BucketForHour(c.hour); got != c.want {
			t.Fatalf("hour %d: expected %s, got %s", c.hour, c.want, got)
		}
	}
}

func TestEstimatorPredictPhaseUsesClock(t *testing.T) {
	e := New()
	e.Now = fixedTime // 09:30 → morning bucket

	p := opioidProfile()
	p.TimeOfDayBias[domain.BucketMorning] = -15

	pred := e.PredictPhase(p, 10)
	if pred.Phase != domain.PhaseKickingIn {
		t.Fatalf("expected morning bias applied, got %s", pred.Phase)
	}
}
