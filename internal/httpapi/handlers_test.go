package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/pipeline"
	"storycat.app/internal/project"
	"storycat.app/internal/reports"
	"storycat.app/internal/store/memory"
	"storycat.app/internal/stream"
	"storycat.app/internal/timelog"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("STORYCAT_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	mem := memory.New()
	seedAdmin(t, mem)

	authSvc, err := auth.NewService(mem)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	contentSvc, err := content.NewService(mem)
	if err != nil {
		t.Fatalf("content service: %v", err)
	}
	projectSvc, err := project.NewService(mem, mem)
	if err != nil {
		t.Fatalf("project service: %v", err)
	}
	timelogSvc, err := timelog.NewService(mem)
	if err != nil {
		t.Fatalf("timelog service: %v", err)
	}
	reportsSvc, err := reports.NewService(mem)
	if err != nil {
		t.Fatalf("reports service: %v", err)
	}

	api := New(Config{
		Auth:     authSvc,
		Content:  contentSvc,
		Projects: projectSvc,
		Timelogs: timelogSvc,
		Reports:  reportsSvc,
		Stream:   stream.New(),
		Version:  "test",
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func seedAdmin(t *testing.T, mem *memory.Store) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	err = mem.CreateProfile(context.Background(), &auth.Profile{
		ID:           "admin-1",
		Email:        "admin@storycat.test",
		FullName:     "Admin",
		Role:         pipeline.RoleAdmin,
		PasswordHash: hash,
		Status:       auth.ProfileStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u := path
	if params != nil {
		u += "?" + params.Encode()
	}
	return c.do(http.MethodGet, u, nil, headers)
}

func (c *apiClient) login(email, password string) (string, string) {
	c.t.Helper()
	resp := c.post("/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status for %s: %d", email, resp.StatusCode)
	}
	var payload struct {
		Token   string `json:"token"`
		Profile struct {
			ID string `json:"id"`
		} `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload.Token, payload.Profile.ID
}

func (c *apiClient) createEmployee(adminToken, email, name, role string) string {
	c.t.Helper()
	resp := c.post("/v1/employees", map[string]any{
		"email":     email,
		"full_name": name,
		"role":      role,
		"password":  "password123",
	}, bearerHeader(adminToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("create employee %s: status %d", email, resp.StatusCode)
	}
	created := decode[map[string]any](c.t, resp)
	return created["id"].(string)
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestLoginFailureCarriesStableCode(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/v1/auth/login", map[string]any{
		"email":    "admin@storycat.test",
		"password": "wrong-password",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["code"] != auth.CodeInvalidCredentials {
		t.Fatalf("expected code %q, got %v", auth.CodeInvalidCredentials, body["code"])
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/v1/projects", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	resp = api.get("/healthz", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz must stay public, got %d", resp.StatusCode)
	}
}

func TestFullProductionPipeline(t *testing.T) {
	api := newTestAPI(t)
	adminToken, adminID := api.login("admin@storycat.test", "password123")
	_ = adminID

	dmID := api.createEmployee(adminToken, "dm@storycat.test", "Dana Marketer", "digital_marketing_manager")
	copyID := api.createEmployee(adminToken, "copy@storycat.test", "Casey Writer", "copywriter")
	copyQCID := api.createEmployee(adminToken, "copyqc@storycat.test", "Quinn Reader", "copy_qc")
	designID := api.createEmployee(adminToken, "design@storycat.test", "Devin Artist", "designer")
	designQCID := api.createEmployee(adminToken, "designqc@storycat.test", "Drew Checker", "designer_qc")

	// Project with two generated items staffed from the onboarding roster.
	resp := api.post("/v1/projects", map[string]any{
		"title":         "Acme Spring Campaign",
		"brief":         "Product teasers for spring.",
		"start_date":    "2026-03-01",
		"end_date":      "2026-04-30",
		"content_count": 2,
		"onboarding": map[string]any{
			"company_name":           "Acme",
			"dedicated_dm_id":        dmID,
			"dedicated_copy_id":      copyID,
			"dedicated_copy_qc_id":   copyQCID,
			"dedicated_designer_id":  designID,
			"dedicated_design_qc_id": designQCID,
		},
	}, bearerHeader(adminToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project: status %d", resp.StatusCode)
	}
	proj := decode[map[string]any](t, resp)
	projID := proj["id"].(string)

	resp = api.get("/v1/projects/"+projID+"/items", nil, bearerHeader(adminToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list items: status %d", resp.StatusCode)
	}
	listing := decode[map[string][]map[string]any](t, resp)
	items := listing["items"]
	if len(items) != 2 {
		t.Fatalf("expected 2 generated items, got %d", len(items))
	}
	itemID := items[0]["id"].(string)
	if items[0]["status"] != string(pipeline.StatusPendingDM) {
		t.Fatalf("generated item not pending_dm: %v", items[0]["status"])
	}

	dmToken, _ := api.login("dm@storycat.test", "password123")
	copyToken, _ := api.login("copy@storycat.test", "password123")
	copyQCToken, _ := api.login("copyqc@storycat.test", "password123")
	designToken, _ := api.login("design@storycat.test", "password123")
	designQCToken, _ := api.login("designqc@storycat.test", "password123")

	// Copywriter cannot act while the item waits on digital marketing.
	resp = api.get("/v1/items/"+itemID+"/permissions", nil, bearerHeader(copyToken))
	perms := decode[map[string]any](t, resp)
	if perms["can_edit"] != false {
		t.Fatalf("copywriter must not edit a pending_dm item")
	}

	// DM drafts the idea and submits.
	resp = api.do(http.MethodPatch, "/v1/items/"+itemID, map[string]any{
		"marketing_notes":  "Audience: existing customers.",
		"marketing_thread": "thread-1",
	}, bearerHeader(dmToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dm draft update: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.post("/v1/items/"+itemID+"/submit-idea", nil, bearerHeader(dmToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit-idea: status %d", resp.StatusCode)
	}
	moved := decode[map[string]any](t, resp)
	if moved["status"] != string(pipeline.StatusPendingCopy) {
		t.Fatalf("unexpected status after submit-idea: %v", moved["status"])
	}
	if moved["current_stage"] != string(pipeline.StageCopywriter) {
		t.Fatalf("stage must follow status: %v", moved["current_stage"])
	}

	// Copywriter drafts and submits copy.
	resp = api.do(http.MethodPatch, "/v1/items/"+itemID, map[string]any{
		"copy_content": "Spring is here. Meet the new Acme lineup.",
	}, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("copy draft update: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.post("/v1/items/"+itemID+"/submit-copy", nil, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit-copy: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Copy QC rejects with feedback, the writer resubmits, QC approves.
	resp = api.post("/v1/items/"+itemID+"/reject-copy", map[string]any{
		"reason": "Tone is off, make it warmer.",
	}, bearerHeader(copyQCToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject-copy: status %d", resp.StatusCode)
	}
	rejected := decode[map[string]any](t, resp)
	if rejected["status"] != string(pipeline.StatusRejectedFromCopyQC) {
		t.Fatalf("unexpected status after reject: %v", rejected["status"])
	}
	if rejected["rejection_reason"] != "Tone is off, make it warmer." {
		t.Fatalf("rejection reason not stored: %v", rejected["rejection_reason"])
	}

	resp = api.post("/v1/items/"+itemID+"/submit-copy", nil, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resubmit copy: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.post("/v1/items/"+itemID+"/approve-copy", nil, bearerHeader(copyQCToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve-copy: status %d", resp.StatusCode)
	}
	approved := decode[map[string]any](t, resp)
	if approved["status"] != string(pipeline.StatusPendingDesign) {
		t.Fatalf("unexpected status after approve-copy: %v", approved["status"])
	}

	// Designer ships the asset, design QC approves.
	resp = api.post("/v1/items/"+itemID+"/submit-design", map[string]any{
		"asset_url": "/assets/01-spring-hero.png",
	}, bearerHeader(designToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit-design: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.post("/v1/items/"+itemID+"/approve-design", nil, bearerHeader(designQCToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve-design: status %d", resp.StatusCode)
	}
	done := decode[map[string]any](t, resp)
	if done["status"] != string(pipeline.StatusCompleted) {
		t.Fatalf("unexpected status after approve-design: %v", done["status"])
	}

	// Admin verification freezes the item.
	resp = api.post("/v1/items/"+itemID+"/verify", nil, bearerHeader(adminToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: status %d", resp.StatusCode)
	}
	verified := decode[map[string]any](t, resp)
	if verified["is_admin_verified"] != true {
		t.Fatalf("item not verified")
	}

	resp = api.do(http.MethodPatch, "/v1/items/"+itemID, map[string]any{
		"copy_content": "sneaky edit",
	}, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("verified item must reject edits, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin reopens back into design.
	resp = api.post("/v1/items/"+itemID+"/reopen", map[string]any{
		"reason": "Swap the hero image for the approved variant.",
		"to":     string(pipeline.StatusPendingDesign),
	}, bearerHeader(adminToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reopen: status %d", resp.StatusCode)
	}
	reopened := decode[map[string]any](t, resp)
	if reopened["status"] != string(pipeline.StatusPendingDesign) {
		t.Fatalf("unexpected status after reopen: %v", reopened["status"])
	}
	if reopened["is_admin_verified"] != false {
		t.Fatalf("reopen must clear verification")
	}
}

func TestWrongRoleCannotMovePipeline(t *testing.T) {
	api := newTestAPI(t)
	adminToken, _ := api.login("admin@storycat.test", "password123")

	dmID := api.createEmployee(adminToken, "dm@storycat.test", "Dana Marketer", "digital_marketing_manager")
	api.createEmployee(adminToken, "design@storycat.test", "Devin Artist", "designer")

	resp := api.post("/v1/projects", map[string]any{
		"title":         "Mini Campaign",
		"start_date":    "2026-03-01",
		"end_date":      "2026-03-31",
		"content_count": 1,
		"onboarding":    map[string]any{"dedicated_dm_id": dmID},
	}, bearerHeader(adminToken))
	proj := decode[map[string]any](t, resp)
	projID := proj["id"].(string)

	resp = api.get("/v1/projects/"+projID+"/items", nil, bearerHeader(adminToken))
	listing := decode[map[string][]map[string]any](t, resp)
	itemID := listing["items"][0]["id"].(string)

	designToken, _ := api.login("design@storycat.test", "password123")
	resp = api.post("/v1/items/"+itemID+"/submit-idea", nil, bearerHeader(designToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("designer submitted an idea: status %d", resp.StatusCode)
	}
}

func TestTimeTrackingSingleActiveSession(t *testing.T) {
	api := newTestAPI(t)
	adminToken, _ := api.login("admin@storycat.test", "password123")
	api.createEmployee(adminToken, "copy@storycat.test", "Casey Writer", "copywriter")
	copyToken, _ := api.login("copy@storycat.test", "password123")

	start := map[string]any{
		"content_item_id": "item-1",
		"project_id":      "proj-1",
	}
	resp := api.post("/v1/timelogs/start", start, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A second start must be refused while the first runs.
	resp = api.post("/v1/timelogs/start", start, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/timelogs/active", nil, bearerHeader(copyToken))
	active := decode[map[string]any](t, resp)
	if active["active"] == nil {
		t.Fatalf("expected an active session")
	}

	resp = api.post("/v1/timelogs/stop", nil, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.post("/v1/timelogs/stop", nil, bearerHeader(copyToken))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("stop without active session: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/timelogs/active", nil, bearerHeader(copyToken))
	active = decode[map[string]any](t, resp)
	if active["active"] != nil {
		t.Fatalf("expected no active session after stop")
	}
}

func TestReportsRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	adminToken, _ := api.login("admin@storycat.test", "password123")
	api.createEmployee(adminToken, "copy@storycat.test", "Casey Writer", "copywriter")
	copyToken, _ := api.login("copy@storycat.test", "password123")

	resp := api.get("/v1/reports/production", nil, bearerHeader(copyToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("copywriter read reports: status %d", resp.StatusCode)
	}

	resp = api.get("/v1/reports/production", nil, bearerHeader(adminToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin reports: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/reports/insights", nil, bearerHeader(adminToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insights: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
