package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// ─── Effect profiles ────────────────────────────────────────────────────────

// UpsertProfile stores the current profile for a substance. The bias map
// is stored as JSON; everything else gets its own column so the store can
// be inspected with plain SQL.
func (d *DB) UpsertProfile(p domain.EffectProfile) error {
	bias, err := json.Marshal(p.TimeOfDayBias)
	if err != nil {
		return fmt.Errorf("marshal bias: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO profiles (substance_id, substance_name, onset_minutes, peak_minutes,
		   wear_off_minutes, duration_minutes, confidence, samples,
		   sigma_onset, sigma_peak, sigma_wear, sigma_duration, bias, auto_stop, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(substance_id) DO UPDATE SET
		   substance_name=excluded.substance_name,
		   onset_minutes=excluded.onset_minutes,
		   peak_minutes=excluded.peak_minutes,
		   wear_off_minutes=excluded.wear_off_minutes,
		   duration_minutes=excluded.duration_minutes,
		   confidence=excluded.confidence,
		   samples=excluded.samples,
		   sigma_onset=excluded.sigma_onset,
		   sigma_peak=excluded.sigma_peak,
		   sigma_wear=excluded.sigma_wear,
		   sigma_duration=excluded.sigma_duration,
		   bias=excluded.bias,
		   auto_stop=excluded.auto_stop,
		   updated_at=excluded.updated_at`,
		p.SubstanceID, p.SubstanceName, p.OnsetMinutes, p.PeakMinutes,
		p.WearOffStartMinutes, p.DurationMinutes, p.Confidence, p.Samples,
		p.SigmaOnset, p.SigmaPeak, p.SigmaWear, p.SigmaDuration,
		string(bias), p.AutoStopOnWearOff, p.LastUpdated.Unix(),
	)
	return err
}

// GetProfile returns the stored profile for a substance.
func (d *DB) GetProfile(substanceID string) (domain.EffectProfile, error) {
	var p domain.EffectProfile
	var bias string
	var updated int64
	err := d.db.QueryRow(
		`SELECT substance_id, substance_name, onset_minutes, peak_minutes,
		   wear_off_minutes, duration_minutes, confidence, samples,
		   sigma_onset, sigma_peak, sigma_wear, sigma_duration, bias, auto_stop, updated_at
		 FROM profiles WHERE substance_id = ?`, substanceID,
	).Scan(&p.SubstanceID, &p.SubstanceName, &p.OnsetMinutes, &p.PeakMinutes,
		&p.WearOffStartMinutes, &p.DurationMinutes, &p.Confidence, &p.Samples,
		&p.SigmaOnset, &p.SigmaPeak, &p.SigmaWear, &p.SigmaDuration,
		&bias, &p.AutoStopOnWearOff, &updated)
	if err == sql.ErrNoRows {
		return p, domain.ErrProfileNotFound
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(bias), &p.TimeOfDayBias); err != nil {
		return p, fmt.Errorf("unmarshal bias: %w", err)
	}
	if len(p.TimeOfDayBias) == 0 {
		p.TimeOfDayBias = domain.ZeroBias()
	}
	p.LastUpdated = time.Unix(updated, 0).UTC()
	return p, nil
}

// ─── Doses ──────────────────────────────────────────────────────────────────

// InsertDose records a dose administration.
func (d *DB) InsertDose(dose domain.Dose) error {
	_, err := d.db.Exec(
		`INSERT INTO doses (id, substance_id, taken_at) VALUES (?, ?, ?)`,
		dose.ID, dose.SubstanceID, dose.TakenAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert dose: %w", err)
	}
	return nil
}

// GetDose returns a dose by id.
func (d *DB) GetDose(id string) (domain.Dose, error) {
	var dose domain.Dose
	var taken int64
	err := d.db.QueryRow(
		`SELECT id, substance_id, taken_at FROM doses WHERE id = ?`, id,
	).Scan(&dose.ID, &dose.SubstanceID, &taken)
	if err == sql.ErrNoRows {
		return dose, domain.ErrDoseNotFound
	}
	if err != nil {
		return dose, err
	}
	dose.TakenAt = time.Unix(taken, 0).UTC()
	return dose, nil
}

// ListDoses returns recent doses for a substance, newest first.
func (d *DB) ListDoses(substanceID string, limit int) ([]domain.Dose, error) {
	rows, err := d.db.Query(
		`SELECT id, substance_id, taken_at FROM doses
		 WHERE substance_id = ? ORDER BY taken_at DESC LIMIT ?`, substanceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doses []domain.Dose
	for rows.Next() {
		var dose domain.Dose
		var taken int64
		if err := rows.Scan(&dose.ID, &dose.SubstanceID, &taken); err != nil {
			return nil, err
		}
		dose.TakenAt = time.Unix(taken, 0).UTC()
		doses = append(doses, dose)
	}
	return doses, rows.Err()
}

// ─── Feedback events ────────────────────────────────────────────────────────

// InsertFeedback appends a feedback event for a dose.
func (d *DB) InsertFeedback(doseID string, ev domain.EffectEvent) error {
	_, err := d.db.Exec(
		`INSERT INTO feedback_events (dose_id, status, offset_minutes, reported_at)
		 VALUES (?, ?, ?, ?)`,
		doseID, string(ev.Status), ev.OffsetMinutes, ev.ReportedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all feedback events for a dose in ascending offset
// order — the order the updater folds them in.
func (d *DB) ListFeedback(doseID string) ([]domain.EffectEvent, error) {
	rows, err := d.db.Query(
		`SELECT status, offset_minutes, reported_at FROM feedback_events
		 WHERE dose_id = ? ORDER BY offset_minutes ASC`, doseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evs []domain.EffectEvent
	for rows.Next() {
		var ev domain.EffectEvent
		var status string
		var reported int64
		if err := rows.Scan(&status, &ev.OffsetMinutes, &reported); err != nil {
			return nil, err
		}
		ev.Status = domain.EventStatus(status)
		ev.ReportedAt = time.Unix(reported, 0).UTC()
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}
