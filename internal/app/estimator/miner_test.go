package estimator

import (
	"math"
	"testing"
)

// The mining heuristics are best-effort: these tests pin the description
// formats actually seen in reference data, not arbitrary free text.

func TestMineOnsetAndTotal(t *testing.T) {
	m := Mine("Duration: 20-40 minutes onset, 3-6 hours total")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 30 {
		t.Fatalf("expected onset 30, got %f", m.OnsetMinutes)
	}
	if m.TotalMinutes != 270 {
		t.Fatalf("expected total 270, got %f", m.TotalMinutes)
	}
}

func TestMineImmediateOnset(t *testing.T) {
	m := Mine("Duration: Immediate onset, 1-5 minutes total")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 0 {
		t.Fatalf("expected onset 0, got %f", m.OnsetMinutes)
	}
	if m.TotalMinutes != 3 {
		t.Fatalf("expected total 3, got %f", m.TotalMinutes)
	}
}

func TestMineRequiresDurationMarker(t *testing.T) {
	if m := Mine("Onset within 20-40 minutes, lasts 3-6 hours"); m != nil {
		t.Fatalf("expected nil without the word 'duration', got %+v", m)
	}
}

func TestMineNoNumbers(t *testing.T) {
	if m := Mine("Duration varies widely between individuals"); m != nil {
		t.Fatalf("expected nil without numeric ranges, got %+v", m)
	}
}

func TestMineOnlyTotalInfersOnset(t *testing.T) {
	m := Mine("Duration: 4-6 hours")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.TotalMinutes != 300 {
		t.Fatalf("expected total 300, got %f", m.TotalMinutes)
	}
	// Onset inferred as 15% of total.
	if m.OnsetMinutes != 45 {
		t.Fatalf("expected inferred onset 45, got %f", m.OnsetMinutes)
	}
}

func TestMineOnlyOnsetInfersTotal(t *testing.T) {
	m := Mine("Duration: 10-20 minutes onset")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 15 {
		t.Fatalf("expected onset 15, got %f", m.OnsetMinutes)
	}
	// max(4×onset, onset+60) = max(60, 75) = 75.
	if m.TotalMinutes != 75 {
		t.Fatalf("expected inferred total 75, got %f", m.TotalMinutes)
	}
}

func TestMineHourOnset(t *testing.T) {
	m := Mine("Duration: 1-2 hours onset, 8-12 hours total (oral)")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 90 {
		t.Fatalf("expected onset 90, got %f", m.OnsetMinutes)
	}
	if m.TotalMinutes != 600 {
		t.Fatalf("expected total 600, got %f", m.TotalMinutes)
	}
}

func TestMineSingleBoundRange(t *testing.T) {
	m := Mine("Duration: 30 minutes onset, 2 hours total")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 30 || m.TotalMinutes != 120 {
		t.Fatalf("expected 30/120, got %f/%f", m.OnsetMinutes, m.TotalMinutes)
	}
}

func TestMineRouteQualifier(t *testing.T) {
	m := Mine("Duration: 15-30 minutes onset, 4-8 hours insufflated")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 22.5 {
		t.Fatalf("expected onset 22.5, got %f", m.OnsetMinutes)
	}
	if m.TotalMinutes != 360 {
		t.Fatalf("expected total 360, got %f", m.TotalMinutes)
	}
}

func TestMineCaseInsensitive(t *testing.T) {
	m := Mine("DURATION: 20-40 MINUTES ONSET, 3-6 HOURS TOTAL")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if m.OnsetMinutes != 30 || m.TotalMinutes != 270 {
		t.Fatalf("expected 30/270, got %f/%f", m.OnsetMinutes, m.TotalMinutes)
	}
}

func TestMineValuesFinite(t *testing.T) {
	m := Mine("Duration: 20-40 minutes onset, 3-6 hours total")
	if m == nil {
		t.Fatal("expected mined durations, got nil")
	}
	if math.IsNaN(m.OnsetMinutes) || math.IsNaN(m.TotalMinutes) {
		t.Fatal("mined values must be finite")
	}
}
