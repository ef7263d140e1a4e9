package httpapi

import (
	"errors"
	"net/http"

	"storycat.app/internal/audit"
	"storycat.app/internal/obs"
	"storycat.app/internal/timelog"
)

type startTimelogRequest struct {
	ContentItemID string `json:"content_item_id"`
	ProjectID     string `json:"project_id"`
}

func (a *API) handleTimelogStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	var req startTimelogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	l, err := a.timelogs.Start(r.Context(), actor.ID, req.ContentItemID, req.ProjectID)
	if err != nil {
		outcome := "error"
		if errors.Is(err, timelog.ErrActiveExists) {
			outcome = "active_exists"
		}
		obs.CountTimeLogOp("start", outcome)
		handleDomainError(w, r, err)
		return
	}
	obs.CountTimeLogOp("start", "ok")
	_ = audit.LogEvent(r.Context(), "timelog.start", map[string]any{
		"log_id":  l.ID,
		"item_id": l.ContentItemID,
	})
	writeJSON(w, http.StatusCreated, l)
}

func (a *API) handleTimelogStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	l, err := a.timelogs.Stop(r.Context(), actor.ID)
	if err != nil {
		outcome := "error"
		if errors.Is(err, timelog.ErrNoActive) {
			outcome = "no_active"
		}
		obs.CountTimeLogOp("stop", outcome)
		handleDomainError(w, r, err)
		return
	}
	obs.CountTimeLogOp("stop", "ok")
	_ = audit.LogEvent(r.Context(), "timelog.stop", map[string]any{
		"log_id":           l.ID,
		"duration_seconds": l.DurationSeconds,
	})
	writeJSON(w, http.StatusOK, l)
}

func (a *API) handleTimelogActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	l, err := a.timelogs.Active(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, timelog.ErrNoActive) {
			writeJSON(w, http.StatusOK, map[string]any{"active": nil})
			return
		}
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": l})
}
