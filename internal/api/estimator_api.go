package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dosewatch/dosewatch/internal/app/estimator"
	"github.com/dosewatch/dosewatch/internal/domain"
	"github.com/dosewatch/dosewatch/internal/infra/metrics"
)

// ─── Substances ─────────────────────────────────────────────────────────────

type createSubstanceRequest struct {
	Name               string          `json:"name"`
	Category           domain.Category `json:"category"`
	DependencyCategory domain.Category `json:"dependency_category,omitempty"`
	AutoStopOnWearOff  bool            `json:"auto_stop_on_wear_off"`
}

func (s *Server) handleListSubstances(w http.ResponseWriter, r *http.Request) {
	subs, err := s.db.ListSubstances()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"substances": subs})
}

func (s *Server) handleCreateSubstance(w http.ResponseWriter, r *http.Request) {
	var req createSubstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Category == "" {
		req.Category = domain.CategoryLowRisk
	}

	if _, err := s.db.GetSubstanceByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, domain.ErrSubstanceExists.Error())
		return
	} else if !errors.Is(err, domain.ErrSubstanceNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub := domain.Substance{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Category:           req.Category,
		DependencyCategory: req.DependencyCategory,
		AutoStopOnWearOff:  req.AutoStopOnWearOff,
	}
	if err := s.db.InsertSubstance(sub); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Resolve the baseline up front so the first prediction has a profile.
	profile, err := s.resolveBaseline(sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"substance": sub,
		"profile":   profile,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sub, err := s.db.GetSubstance(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}
	profile, err := s.loadOrResolveProfile(sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// resolveBaseline runs the baseline resolver against the reference
// database and persists the result.
func (s *Server) resolveBaseline(sub domain.Substance) (domain.EffectProfile, error) {
	entries, err := s.db.ListReferenceEntries()
	if err != nil {
		return domain.EffectProfile{}, err
	}
	ref := estimator.FindReference(entries, sub.Name)
	profile, source := estimator.ResolveBaselineWithSource(sub, ref, nil, s.est.Now())
	metrics.BaselinesResolved.WithLabelValues(string(source)).Inc()

	if err := s.db.UpsertProfile(profile); err != nil {
		return domain.EffectProfile{}, err
	}
	return profile, nil
}

// loadOrResolveProfile returns the stored profile, resolving a fresh
// baseline on first touch.
func (s *Server) loadOrResolveProfile(sub domain.Substance) (domain.EffectProfile, error) {
	profile, err := s.db.GetProfile(sub.ID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return s.resolveBaseline(sub)
	}
	return profile, err
}

// ─── Doses ──────────────────────────────────────────────────────────────────

type createDoseRequest struct {
	SubstanceID string    `json:"substance_id"`
	TakenAt     time.Time `json:"taken_at,omitempty"`
}

func (s *Server) handleCreateDose(w http.ResponseWriter, r *http.Request) {
	var req createDoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if _, err := s.db.GetSubstance(req.SubstanceID); err != nil {
		writeNotFoundOr500(w, err)
		return
	}

	takenAt := req.TakenAt
	if takenAt.IsZero() {
		takenAt = s.est.Now()
	}
	dose := domain.Dose{
		ID:          uuid.NewString(),
		SubstanceID: req.SubstanceID,
		TakenAt:     takenAt,
	}
	if err := s.db.InsertDose(dose); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, dose)
}

type phaseResponse struct {
	DoseID         string       `json:"dose_id"`
	Phase          domain.Phase `json:"phase"`
	Progress       float64      `json:"progress"`
	ElapsedMinutes float64      `json:"elapsed_minutes"`
	Confidence     float64      `json:"confidence"`
	AutoStop       bool         `json:"auto_stop_on_wear_off"`
}

func (s *Server) handleDosePhase(w http.ResponseWriter, r *http.Request) {
	dose, err := s.db.GetDose(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}
	sub, err := s.db.GetSubstance(dose.SubstanceID)
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}
	profile, err := s.loadOrResolveProfile(sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pred := s.est.PredictPhaseForDose(profile, dose)
	metrics.PredictionsServed.WithLabelValues(string(pred.Phase)).Inc()

	writeJSON(w, http.StatusOK, phaseResponse{
		DoseID:         dose.ID,
		Phase:          pred.Phase,
		Progress:       pred.Progress,
		ElapsedMinutes: dose.ElapsedMinutes(s.est.Now()),
		Confidence:     profile.Confidence,
		AutoStop:       profile.AutoStopOnWearOff,
	})
}

// ─── Feedback ───────────────────────────────────────────────────────────────

type feedbackRequest struct {
	Status domain.EventStatus `json:"status"`
	// OffsetMinutes is optional; when omitted the elapsed time since the
	// dose is used.
	OffsetMinutes *float64 `json:"offset_minutes,omitempty"`
}

func (s *Server) handleDoseFeedback(w http.ResponseWriter, r *http.Request) {
	dose, err := s.db.GetDose(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidStatus.Error())
		return
	}

	offset := dose.ElapsedMinutes(s.est.Now())
	if req.OffsetMinutes != nil {
		offset = *req.OffsetMinutes
	}
	if offset < 0 {
		writeError(w, http.StatusBadRequest, domain.ErrNegativeOffset.Error())
		return
	}

	ev := domain.EffectEvent{
		Status:        req.Status,
		OffsetMinutes: offset,
		ReportedAt:    s.est.Now(),
	}
	if err := s.db.InsertFeedback(dose.ID, ev); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub, err := s.db.GetSubstance(dose.SubstanceID)
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}
	profile, err := s.loadOrResolveProfile(sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated := s.est.UpdateFromEvent(profile, ev, dose.Bucket())
	s.recordUpdate(sub.Name, ev.Status, profile, updated)

	if err := s.db.UpsertProfile(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDoseRefold recomputes a dose's profile from scratch: fresh
// baseline, then all recorded feedback folded in ascending offset order.
// Used after a user corrects earlier feedback.
func (s *Server) handleDoseRefold(w http.ResponseWriter, r *http.Request) {
	dose, err := s.db.GetDose(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}
	sub, err := s.db.GetSubstance(dose.SubstanceID)
	if err != nil {
		writeNotFoundOr500(w, err)
		return
	}

	baseline, err := s.resolveBaseline(sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	evs, err := s.db.ListFeedback(dose.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated := s.est.UpdateFromEvents(baseline, evs, dose.Bucket())
	metrics.ProfileConfidence.WithLabelValues(sub.Name).Set(updated.Confidence)

	if err := s.db.UpsertProfile(updated); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// recordUpdate publishes the learning metrics for one fold.
func (s *Server) recordUpdate(substance string, status domain.EventStatus, before, after domain.EffectProfile) {
	metrics.FeedbackFolded.WithLabelValues(string(status)).Inc()
	metrics.UpdateShift.Observe(math.Abs(after.DurationMinutes - before.DurationMinutes))
	metrics.ProfileConfidence.WithLabelValues(substance).Set(after.Confidence)
}

// writeNotFoundOr500 maps store sentinel errors to 404 and everything
// else to 500.
func writeNotFoundOr500(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSubstanceNotFound),
		errors.Is(err, domain.ErrDoseNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
