package domain

import "time"

// Substance is a tracked medication or compound. Owned by the calling
// application; the estimator only reads it to resolve baselines.
type Substance struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Category           Category `json:"category"`
	DependencyCategory Category `json:"dependency_category,omitempty"`
	AutoStopOnWearOff  bool     `json:"auto_stop_on_wear_off"`
}

// ReferenceEntry is a read-only row of the substance reference database:
// a name, known aliases, and a free-text description that may contain a
// duration clause the miner can extract.
type ReferenceEntry struct {
	Name        string   `json:"name"`
	GenericName string   `json:"generic_name,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
}

// Dose is a single administration of a substance. TakenAt anchors both
// the elapsed-minutes computation and the day bucket used for bias.
type Dose struct {
	ID          string    `json:"id"`
	SubstanceID string    `json:"substance_id"`
	TakenAt     time.Time `json:"taken_at"`
}

// ElapsedMinutes returns minutes since the dose at time now, clamped ≥ 0.
func (d Dose) ElapsedMinutes(now time.Time) float64 {
	m := now.Sub(d.TakenAt).Minutes()
	if m < 0 {
		return 0
	}
	return m
}

// Bucket returns the day bucket the dose was taken in.
func (d Dose) Bucket() DayBucket {
	return BucketForTime(d.TakenAt)
}
