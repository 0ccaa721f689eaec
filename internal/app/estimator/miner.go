package estimator

import (
	"regexp"
	"strconv"
	"strings"
)

// MinedDurations is the Text Duration Miner's output: approximate average
// onset and total duration in minutes, extracted from a free-text
// substance description.
type MinedDurations struct {
	OnsetMinutes float64 `json:"onset_minutes"`
	TotalMinutes float64 `json:"total_minutes"`
}

var (
	// "immediate onset" / "instant onset" — onset is zero.
	immediateOnsetRe = regexp.MustCompile(`(?i)\b(?:immediate|instant(?:aneous)?)\s+onset\b`)

	// Numeric range followed by a time unit: "20-40 minutes", "3 to 6 hours",
	// "90 min". The second bound is optional.
	durationRangeRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:[-–~]|to\s)?\s*(\d+(?:\.\d+)?)?\s*(hours?|hrs?|hr|h|minutes?|mins?|min|m)\b`)
)

// onsetLookahead is how far past a matched range we look for the word
// "onset" to classify the clause.
const onsetLookahead = 20

// Mine extracts approximate onset and total-duration minutes from a
// free-text description. Returns nil when nothing usable is found — a
// legitimate negative result, not an error. The heuristics are
// best-effort: the first onset-tagged range wins, and the first untagged
// range (optionally trailed by qualifiers like "total" or a route of
// administration) is taken as the total.
func Mine(description string) *MinedDurations {
	if !strings.Contains(strings.ToLower(description), "duration") {
		return nil
	}

	var (
		onset, total         float64
		haveOnset, haveTotal bool
	)

	if immediateOnsetRe.MatchString(description) {
		haveOnset = true
	}

	for _, m := range durationRangeRe.FindAllStringSubmatchIndex(description, -1) {
		val, ok := rangeAverage(description, m)
		if !ok {
			continue
		}
		if taggedOnset(description, m[1]) {
			if !haveOnset {
				onset = val
				haveOnset = true
			}
			continue
		}
		if !haveTotal {
			total = val
			haveTotal = true
		}
	}

	switch {
	case !haveOnset && !haveTotal:
		return nil
	case !haveOnset:
		// Only a total: onset is roughly the first 15% of the experience.
		onset = total * onsetFrac
	case !haveTotal:
		// Only an onset: assume the effect outlasts onset several times over.
		total = maxf(4*onset, onset+60)
	}

	return &MinedDurations{OnsetMinutes: onset, TotalMinutes: total}
}

// rangeAverage averages the one or two bounds of a matched range and
// converts the unit to minutes.
func rangeAverage(s string, m []int) (float64, bool) {
	lo, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
	if err != nil {
		return 0, false
	}
	hi := lo
	if m[4] >= 0 {
		hi, err = strconv.ParseFloat(s[m[4]:m[5]], 64)
		if err != nil {
			return 0, false
		}
	}
	avg := (lo + hi) / 2
	if unit := strings.ToLower(s[m[6]:m[7]]); strings.HasPrefix(unit, "h") {
		avg *= 60
	}
	return avg, true
}

// taggedOnset reports whether the text shortly after position end contains
// the word "onset", marking the preceding range as an onset clause.
func taggedOnset(s string, end int) bool {
	stop := end + onsetLookahead
	if stop > len(s) {
		stop = len(s)
	}
	return strings.Contains(strings.ToLower(s[end:stop]), "onset")
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
