package httpapi

import (
	"net/http"
	"strings"
	"time"

	"storycat.app/internal/audit"
	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/obs"
	"storycat.app/internal/pipeline"
	"storycat.app/internal/stream"
)

type createItemRequest struct {
	ProjectID      string `json:"project_id"`
	PublishDate    string `json:"publish_date"` // YYYY-MM-DD
	MarketingTitle string `json:"marketing_title"`
	MarketingNotes string `json:"marketing_notes"`
	DMAssigneeID   string `json:"dm_assignee_id"`
}

type draftUpdateRequest struct {
	MarketingTitle  *string `json:"marketing_title"`
	MarketingNotes  *string `json:"marketing_notes"`
	MarketingThread *string `json:"marketing_thread"`
	CopyContent     *string `json:"copy_content"`
	CopyNotes       *string `json:"copy_notes"`
	DesignAssetURL  *string `json:"design_asset_url"`
	PublishDate     *string `json:"publish_date"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type submitDesignRequest struct {
	AssetURL string `json:"asset_url"`
}

type reopenRequest struct {
	Reason string `json:"reason"`
	To     string `json:"to"`
}

type batchSubmitCopyRequest struct {
	ItemIDs []string `json:"item_ids"`
}

func (a *API) handleItemsCollection(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listItems(w, r, actor)
	case http.MethodPost:
		var req createItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		publish, err := parseDate(req.PublishDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "publish_date must be YYYY-MM-DD")
			return
		}
		item, err := a.content.Create(r.Context(), actor, content.NewItem{
			ProjectID:      req.ProjectID,
			PublishDate:    publish,
			MarketingTitle: req.MarketingTitle,
			MarketingNotes: req.MarketingNotes,
			DMAssigneeID:   req.DMAssigneeID,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "content.create", map[string]any{
			"item_id":    item.ID,
			"project_id": item.ProjectID,
		})
		w.Header().Set("Location", "/v1/items/"+item.ID)
		writeJSON(w, http.StatusCreated, item)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// listItems serves the dashboard queues: ?status= filters a stage queue,
// ?assigned=me narrows to the caller's assignments.
func (a *API) listItems(w http.ResponseWriter, r *http.Request, actor auth.Profile) {
	q := r.URL.Query()
	if q.Get("assigned") == "me" {
		items, err := a.content.ListAssignedTo(r.Context(), actor.ID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}
	status := strings.TrimSpace(q.Get("status"))
	if status == "" {
		writeError(w, r, http.StatusBadRequest, "status or assigned=me query parameter is required")
		return
	}
	items, err := a.content.ListByStatus(r.Context(), pipeline.Status(status))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleItemResource(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/items/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// Batch copy submission has no single item id.
	if id == "submit-copy" && rest == "" {
		a.batchSubmitCopy(w, r, actor)
		return
	}

	switch rest {
	case "":
		a.itemByID(w, r, actor, id)
	case "permissions":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		perms, err := a.content.PermissionsFor(r.Context(), actor, id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, perms)
	case "time":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		agg, err := a.timelogs.ByRoleForContent(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": agg})
	default:
		a.itemAction(w, r, actor, id, rest)
	}
}

func (a *API) itemByID(w http.ResponseWriter, r *http.Request, actor auth.Profile, id string) {
	switch r.Method {
	case http.MethodGet:
		item, err := a.content.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPatch:
		var req draftUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		upd := content.DraftUpdate{
			MarketingTitle:  req.MarketingTitle,
			MarketingNotes:  req.MarketingNotes,
			MarketingThread: req.MarketingThread,
			CopyContent:     req.CopyContent,
			CopyNotes:       req.CopyNotes,
			DesignAssetURL:  req.DesignAssetURL,
		}
		if req.PublishDate != nil {
			publish, err := parseDate(*req.PublishDate)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "publish_date must be YYYY-MM-DD")
				return
			}
			upd.PublishDate = &publish
		}
		item, err := a.content.UpdateDraft(r.Context(), actor, id, upd)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

// itemAction dispatches the POST action subroutes that move the pipeline.
func (a *API) itemAction(w http.ResponseWriter, r *http.Request, actor auth.Profile, id, action string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var fromStatus pipeline.Status
	if before, err := a.content.Get(r.Context(), id); err == nil {
		fromStatus = before.Status
	}

	var (
		item *content.Item
		err  error
		act  pipeline.Action
	)
	switch action {
	case "submit-idea":
		act = pipeline.ActionSubmitIdea
		item, err = a.content.SubmitIdea(r.Context(), actor, id)
	case "submit-copy":
		act = pipeline.ActionSubmitCopy
		var items []*content.Item
		items, err = a.content.SubmitCopy(r.Context(), actor, []string{id})
		if err == nil && len(items) == 1 {
			item = items[0]
		}
	case "approve-copy":
		act = pipeline.ActionApproveCopy
		item, err = a.content.ApproveCopy(r.Context(), actor, id)
	case "reject-copy":
		act = pipeline.ActionRejectCopy
		var req reasonRequest
		if derr := decodeJSON(w, r, &req); derr != nil {
			writeError(w, r, http.StatusBadRequest, derr.Error())
			return
		}
		item, err = a.content.RejectCopy(r.Context(), actor, id, req.Reason)
	case "submit-design":
		act = pipeline.ActionSubmitDesign
		var req submitDesignRequest
		if derr := decodeJSON(w, r, &req); derr != nil {
			writeError(w, r, http.StatusBadRequest, derr.Error())
			return
		}
		item, err = a.content.SubmitDesign(r.Context(), actor, id, req.AssetURL)
	case "approve-design":
		act = pipeline.ActionApproveDesign
		item, err = a.content.ApproveDesign(r.Context(), actor, id)
	case "reject-design":
		act = pipeline.ActionRejectDesign
		var req reasonRequest
		if derr := decodeJSON(w, r, &req); derr != nil {
			writeError(w, r, http.StatusBadRequest, derr.Error())
			return
		}
		item, err = a.content.RejectDesign(r.Context(), actor, id, req.Reason)
	case "verify":
		act = pipeline.ActionVerify
		item, err = a.content.Verify(r.Context(), actor, id)
	case "reopen":
		act = pipeline.ActionReopen
		var req reopenRequest
		if derr := decodeJSON(w, r, &req); derr != nil {
			writeError(w, r, http.StatusBadRequest, derr.Error())
			return
		}
		item, err = a.content.Reopen(r.Context(), actor, id, req.Reason, pipeline.Status(req.To))
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if err != nil {
		obs.CountTransition(string(act), "error")
		handleDomainError(w, r, err)
		return
	}
	a.finishAction(r, actor, act, fromStatus, item)
	writeJSON(w, http.StatusOK, item)
}

func (a *API) batchSubmitCopy(w http.ResponseWriter, r *http.Request, actor auth.Profile) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req batchSubmitCopyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.content.SubmitCopy(r.Context(), actor, req.ItemIDs)
	if err != nil {
		obs.CountTransition(string(pipeline.ActionSubmitCopy), "error")
		handleDomainError(w, r, err)
		return
	}
	for _, item := range items {
		a.finishAction(r, actor, pipeline.ActionSubmitCopy, pipeline.StatusPendingCopy, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// finishAction records metrics, audit, and the live feed for one successful
// pipeline transition.
func (a *API) finishAction(r *http.Request, actor auth.Profile, act pipeline.Action, from pipeline.Status, item *content.Item) {
	obs.CountTransition(string(act), "ok")
	_ = audit.LogEvent(r.Context(), "content."+string(act), map[string]any{
		"item_id":    item.ID,
		"project_id": item.ProjectID,
		"status":     item.Status,
		"stage":      item.CurrentStage,
	})
	if a.stream != nil {
		a.stream.Publish(stream.StageEvent{
			ItemID:     item.ID,
			ProjectID:  item.ProjectID,
			Action:     act,
			FromStatus: from,
			ToStatus:   item.Status,
			Stage:      item.CurrentStage,
			ActorID:    actor.ID,
			Timestamp:  time.Now().UTC(),
		})
	}
}
