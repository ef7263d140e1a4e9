package httpapi

import (
	"net/http"
	"strings"
	"time"

	"storycat.app/internal/audit"
	"storycat.app/internal/auth"
	"storycat.app/internal/project"
)

type onboardingRequest struct {
	CompanyName         string `json:"company_name"`
	BrandAssetsURL      string `json:"brand_assets_url"`
	DedicatedDMID       string `json:"dedicated_dm_id"`
	DedicatedCopyID     string `json:"dedicated_copy_id"`
	DedicatedCopyQCID   string `json:"dedicated_copy_qc_id"`
	DedicatedDesignerID string `json:"dedicated_designer_id"`
	DedicatedDesignQCID string `json:"dedicated_design_qc_id"`
}

func (req onboardingRequest) toOnboarding(projectID string) project.Onboarding {
	return project.Onboarding{
		ProjectID:           projectID,
		CompanyName:         req.CompanyName,
		BrandAssetsURL:      req.BrandAssetsURL,
		DedicatedDMID:       req.DedicatedDMID,
		DedicatedCopyID:     req.DedicatedCopyID,
		DedicatedCopyQCID:   req.DedicatedCopyQCID,
		DedicatedDesignerID: req.DedicatedDesignerID,
		DedicatedDesignQCID: req.DedicatedDesignQCID,
	}
}

type createProjectRequest struct {
	Title        string            `json:"title"`
	Brief        string            `json:"brief"`
	StartDate    string            `json:"start_date"` // YYYY-MM-DD
	EndDate      string            `json:"end_date"`
	ContentCount int               `json:"content_count"`
	Onboarding   onboardingRequest `json:"onboarding"`
}

type changeRequestBody struct {
	Note string `json:"note"`
}

func (a *API) handleProjectsCollection(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := a.projects.List(r.Context(), actor)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	case http.MethodPost:
		var req createProjectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		created, err := a.projects.Create(r.Context(), actor, project.NewProject{
			Title:        req.Title,
			Brief:        req.Brief,
			StartDate:    start,
			EndDate:      end,
			ContentCount: req.ContentCount,
			Onboarding:   req.Onboarding.toOnboarding(""),
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "project.create", map[string]any{
			"project_id":    created.ID,
			"content_count": created.ContentCount,
		})
		w.Header().Set("Location", "/v1/projects/"+created.ID)
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/projects/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch rest {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		p, err := a.projects.Get(r.Context(), actor, id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case "items":
		a.listProjectItems(w, r, actor, id)
	case "onboarding":
		a.handleOnboarding(w, r, actor, id)
	case "change-requests":
		a.handleChangeRequests(w, r, actor, id)
	case "time":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		if _, err := a.projects.Get(r.Context(), actor, id); err != nil {
			handleDomainError(w, r, err)
			return
		}
		agg, err := a.timelogs.ByRoleForProject(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": agg})
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) listProjectItems(w http.ResponseWriter, r *http.Request, actor auth.Profile, projectID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	// Visibility check rides on project access.
	if _, err := a.projects.Get(r.Context(), actor, projectID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	items, err := a.content.ListByProject(r.Context(), projectID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleOnboarding(w http.ResponseWriter, r *http.Request, actor auth.Profile, projectID string) {
	switch r.Method {
	case http.MethodGet:
		ob, err := a.projects.Onboarding(r.Context(), actor, projectID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ob)
	case http.MethodPut:
		var req onboardingRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		ob, err := a.projects.UpdateOnboarding(r.Context(), actor, req.toOnboarding(projectID))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "project.onboarding.update", map[string]any{
			"project_id": projectID,
		})
		writeJSON(w, http.StatusOK, ob)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) handleChangeRequests(w http.ResponseWriter, r *http.Request, actor auth.Profile, projectID string) {
	switch r.Method {
	case http.MethodGet:
		list, err := a.projects.ChangeRequests(r.Context(), actor, projectID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	case http.MethodPost:
		var req changeRequestBody
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		cr, err := a.projects.AddChangeRequest(r.Context(), actor, projectID, req.Note)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "project.change_request", map[string]any{
			"project_id": projectID,
			"request_id": cr.ID,
		})
		writeJSON(w, http.StatusCreated, cr)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}
