package cli

import (
	"errors"
	"fmt"

	"github.com/dosewatch/dosewatch/internal/daemon"
	"github.com/dosewatch/dosewatch/internal/domain"
)

// loadProfile fetches the stored profile, resolving a fresh baseline on
// first touch.
func loadProfile(d *daemon.Daemon, sub domain.Substance) (domain.EffectProfile, error) {
	profile, err := d.DB.GetProfile(sub.ID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		entries, lerr := d.DB.ListReferenceEntries()
		if lerr != nil {
			return domain.EffectProfile{}, lerr
		}
		profile = d.Estimator.ResolveBaseline(sub, entries, nil)
		return profile, d.DB.UpsertProfile(profile)
	}
	return profile, err
}

// printProfile renders the timing boundaries of a profile.
func printProfile(p domain.EffectProfile) {
	fmt.Printf("  Onset:      %s\n", fmtMinutes(p.OnsetMinutes))
	fmt.Printf("  Peak:       %s\n", fmtMinutes(p.PeakMinutes))
	fmt.Printf("  Wear-off:   %s\n", fmtMinutes(p.WearOffStartMinutes))
	fmt.Printf("  Duration:   %s\n", fmtMinutes(p.DurationMinutes))
	fmt.Printf("  Confidence: %.0f%% (%d samples)\n", p.Confidence*100, p.Samples)
}

// fmtMinutes renders a minute count as "45m" or "2h30m".
func fmtMinutes(minutes float64) string {
	m := int(minutes + 0.5)
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
