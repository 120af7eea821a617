package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"golf-tracker/internal/domain"
	"golf-tracker/internal/handicap"
	"golf-tracker/internal/store"

	"github.com/gorilla/mux"
)

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sortRounds(rounds, r.URL.Query().Get("sort"))
	s.writeJSON(w, http.StatusOK, map[string]any{"rounds": rounds})
}

func (s *Server) handleAddRound(w http.ResponseWriter, r *http.Request) {
	var in store.RoundInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	round, err := s.store.Add(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, round)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := map[string]any{
		"round":        round,
		"differential": handicap.Differential(round.Score, round.CourseRating, round.SlopeRating),
	}
	if _, index, err := s.store.Derived(r.Context()); err == nil && index != nil {
		resp["courseHandicap"] = handicap.CourseHandicap(*index, round.SlopeRating, round.CourseRating, round.CourseRating)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRound(w http.ResponseWriter, r *http.Request) {
	var in store.RoundInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	round, err := s.store.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, index, err := s.store.Derived(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"handicapIndex": index,
		"stats":         stats,
	})
}

func (s *Server) handleCourseHandicap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slope, err := strconv.Atoi(q.Get("slope"))
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "slope", Reason: "must be an integer"})
		return
	}
	rating, err := strconv.ParseFloat(q.Get("rating"), 64)
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "rating", Reason: "must be a number"})
		return
	}
	par, err := strconv.ParseFloat(q.Get("par"), 64)
	if err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "par", Reason: "must be a number"})
		return
	}
	allowance := 1.0
	if v := q.Get("allowance"); v != "" {
		if allowance, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, r, &domain.ValidationError{Field: "allowance", Reason: "must be a number"})
			return
		}
	}

	_, index, err := s.store.Derived(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if index == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"handicapIndex": nil})
		return
	}

	ch := handicap.CourseHandicap(*index, slope, rating, par)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"handicapIndex":   index,
		"courseHandicap":  ch,
		"playingHandicap": handicap.PlayingHandicap(ch, allowance),
		"category":        handicap.Category(*index),
	})
}

func (s *Server) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.SyncNow(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSyncStatus(w)
}

func (s *Server) handleEnableSync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SyncKey string `json:"syncKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}
	if err := s.engine.Enable(r.Context(), body.SyncKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSyncStatus(w)
}

func (s *Server) handleDisableSync(w http.ResponseWriter, r *http.Request) {
	s.engine.Disable()
	s.writeSyncStatus(w)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	s.writeSyncStatus(w)
}

func (s *Server) writeSyncStatus(w http.ResponseWriter) {
	resp := map[string]any{"status": s.engine.Status()}
	if last := s.engine.LastSync(); !last.IsZero() {
		resp["lastSync"] = last
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func sortRounds(rounds []domain.Round, by string) {
	switch by {
	case "oldest":
		sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].DatePlayed.Before(rounds[j].DatePlayed) })
	case "best":
		sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].Score < rounds[j].Score })
	case "worst":
		sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].Score > rounds[j].Score })
	default: // newest
		sort.SliceStable(rounds, func(i, j int) bool { return rounds[i].DatePlayed.After(rounds[j].DatePlayed) })
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSyncInProgress):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
