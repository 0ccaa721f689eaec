package domain

import "time"

// EventStatus is the phase a user reports being in. Events carry belief,
// not state transitions — they retrain the boundaries the predictor uses.
type EventStatus string

const (
	StatusKickingIn  EventStatus = "kicking_in"
	StatusPeaking    EventStatus = "peaking"
	StatusWearingOff EventStatus = "wearing_off"
	StatusWornOff    EventStatus = "worn_off"
)

// Valid reports whether s is one of the four reportable statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusKickingIn, StatusPeaking, StatusWearingOff, StatusWornOff:
		return true
	}
	return false
}

// EffectEvent is one piece of user feedback: "at OffsetMinutes after the
// dose I was in this phase". Immutable; produced by the calling application.
type EffectEvent struct {
	Status        EventStatus `json:"status"`
	OffsetMinutes float64     `json:"offset_minutes"`
	ReportedAt    time.Time   `json:"reported_at"`
}
