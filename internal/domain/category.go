package domain

// Category is the closed set of substance categories the fallback table
// knows about. Kept as an enumerated mapping rather than free-form string
// dispatch so every category has a compile-visible default.
type Category string

const (
	CategoryOpioid         Category = "opioid"
	CategoryStimulant      Category = "stimulant"
	CategoryBenzodiazepine Category = "benzodiazepine"
	CategorySleepAid       Category = "sleep_aid"
	CategoryAntidepressant Category = "antidepressant"
	CategorySupplement     Category = "supplement"
	CategoryLowRisk        Category = "low_risk"
)

// CategoryDefault is a conservative onset/total-duration pair in minutes,
// used only when no richer data exists for a substance.
type CategoryDefault struct {
	OnsetMinutes    float64 `json:"onset_minutes"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// categoryDefaults is the static fallback table. Values are deliberately
// conservative: overestimating duration keeps reminders on the safe side.
var categoryDefaults = map[Category]CategoryDefault{
	CategoryOpioid:         {OnsetMinutes: 20, DurationMinutes: 300},
	CategoryStimulant:      {OnsetMinutes: 30, DurationMinutes: 360},
	CategoryBenzodiazepine: {OnsetMinutes: 25, DurationMinutes: 480},
	CategorySleepAid:       {OnsetMinutes: 30, DurationMinutes: 420},
	CategoryAntidepressant: {OnsetMinutes: 60, DurationMinutes: 720},
	CategorySupplement:     {OnsetMinutes: 45, DurationMinutes: 240},
	CategoryLowRisk:        {OnsetMinutes: 30, DurationMinutes: 240},
}

// DefaultFor returns the fallback pair for a category and whether the
// category is known.
func DefaultFor(c Category) (CategoryDefault, bool) {
	d, ok := categoryDefaults[c]
	return d, ok
}

// ResolveDefault picks a fallback pair selecting first by dependency-risk
// category, then by general category, then the low_risk default.
func ResolveDefault(dependency, general Category) CategoryDefault {
	if d, ok := categoryDefaults[dependency]; ok {
		return d
	}
	if d, ok := categoryDefaults[general]; ok {
		return d
	}
	return categoryDefaults[CategoryLowRisk]
}
