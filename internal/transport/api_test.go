package transport_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/testserver"
	"github.com/rpggio/crmdesk/internal/transport"
	"github.com/stretchr/testify/require"
)

func createClient(t *testing.T, ts *testserver.TestServer, name string) client.Client {
	t.Helper()
	var c client.Client
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/clients", map[string]any{"name": name}), http.StatusCreated, &c)
	return c
}

func createProject(t *testing.T, ts *testserver.TestServer, clientID, name string) project.Project {
	t.Helper()
	var p project.Project
	body := map[string]any{"client_id": clientID, "name": name}
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/projects", body), http.StatusCreated, &p)
	return p
}

func TestHealthAndMetrics(t *testing.T) {
	ts := testserver.New(t)

	resp := ts.DoWithToken(t, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.DoWithToken(t, "", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientLifecycle(t *testing.T) {
	ts := testserver.New(t)

	c := createClient(t, ts, "Acme Bakery")
	require.Equal(t, "CLI001", c.ID)
	require.Equal(t, client.DefaultSector, c.Sector)

	var got client.Client
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/clients/CLI001", nil), http.StatusOK, &got)
	require.Equal(t, "Acme Bakery", got.Name)

	testserver.Decode(t, ts.Do(t, http.MethodPut, "/api/clients/CLI001", map[string]any{"sector": "retail", "status": "active"}), http.StatusOK, &got)
	require.Equal(t, "retail", got.Sector)
	require.Equal(t, "active", got.Status)
	require.Equal(t, "Acme Bakery", got.Name, "omitted fields unchanged")

	createClient(t, ts, "Zenith Dental")
	var list []client.Client
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/clients?q=bakery", nil), http.StatusOK, &list)
	require.Len(t, list, 1)
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/clients?limit=1&offset=1", nil), http.StatusOK, &list)
	require.Len(t, list, 1)

	var in client.Interaction
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/clients/CLI001/interactions", map[string]any{
		"type":    "call",
		"summary": "Discussed the spring menu site",
	}), http.StatusCreated, &in)
	require.Equal(t, "INT001", in.ID)

	var interactions []client.Interaction
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/clients/CLI001/interactions", nil), http.StatusOK, &interactions)
	require.Len(t, interactions, 1)

	resp := ts.Do(t, http.MethodDelete, "/api/clients/CLI001", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, transport.CodeNotFound, testserver.ErrorCode(t, ts.Do(t, http.MethodGet, "/api/clients/CLI001", nil), http.StatusNotFound))
}

func TestClientValidation(t *testing.T) {
	ts := testserver.New(t)

	code := testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/clients", map[string]any{"email": "x@example.test"}), http.StatusBadRequest)
	require.Equal(t, transport.CodeInvalidInput, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/clients", map[string]any{"name": "Acme", "sector": "space"}), http.StatusBadRequest)
	require.Equal(t, transport.CodeInvalidInput, code)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/clients", strings.NewReader("{not json"))
	require.NoError(t, err)
	code = testserver.ErrorCode(t, ts.Send(t, req), http.StatusBadRequest)
	require.Equal(t, transport.CodeInvalidInput, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodGet, "/api/clients?limit=-5", nil), http.StatusBadRequest)
	require.Equal(t, transport.CodeInvalidInput, code)
}

func TestMissingParents(t *testing.T) {
	ts := testserver.New(t)

	for _, path := range []string{
		"/api/clients/CLI999/projects",
		"/api/clients/CLI999/invoices",
		"/api/clients/CLI999/jumps",
		"/api/clients/CLI999/interactions",
		"/api/projects/PRJ999/tasks",
		"/api/projects/PRJ999/copilots",
		"/api/invoices/INV999/items",
	} {
		code := testserver.ErrorCode(t, ts.Do(t, http.MethodGet, path, nil), http.StatusNotFound)
		require.Equal(t, transport.CodeNotFound, code, path)
	}

	code := testserver.ErrorCode(t, ts.Do(t, http.MethodPut, "/api/projects/PRJ999/copilots", map[string]any{
		"copilots": []map[string]any{{"copilot_id": "COP001"}},
	}), http.StatusNotFound)
	require.Equal(t, transport.CodeNotFound, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPut, "/api/jumps/JMP999/clients", map[string]any{
		"client_ids": []string{"CLI001"},
	}), http.StatusNotFound)
	require.Equal(t, transport.CodeNotFound, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/projects", map[string]any{"client_id": "CLI999", "name": "Site"}), http.StatusBadRequest)
	require.Equal(t, transport.CodeMissingReference, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/projects/PRJ999/tasks", map[string]any{"title": "Wireframes"}), http.StatusBadRequest)
	require.Equal(t, transport.CodeMissingReference, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/clients/CLI999/interactions", map[string]any{"summary": "hello"}), http.StatusBadRequest)
	require.Equal(t, transport.CodeMissingReference, code)
}

func TestDeleteClient_HasDependents(t *testing.T) {
	ts := testserver.New(t)
	c := createClient(t, ts, "Acme Bakery")
	p := createProject(t, ts, c.ID, "Website")

	code := testserver.ErrorCode(t, ts.Do(t, http.MethodDelete, "/api/clients/"+c.ID, nil), http.StatusConflict)
	require.Equal(t, transport.CodeHasDependents, code)

	require.Equal(t, http.StatusNoContent, ts.Do(t, http.MethodDelete, "/api/projects/"+p.ID, nil).StatusCode)
	require.Equal(t, http.StatusNoContent, ts.Do(t, http.MethodDelete, "/api/clients/"+c.ID, nil).StatusCode)
}

func TestJumpClientsAndImages(t *testing.T) {
	ts := testserver.New(t)
	c := createClient(t, ts, "Acme Bakery")

	var j jump.Jump
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/jumps", map[string]any{
		"name":     "Launch Pack",
		"price":    1500,
		"features": []string{"landing page", "seo"},
	}), http.StatusCreated, &j)
	require.Equal(t, "JMP001", j.ID)
	require.Equal(t, []string{"landing page", "seo"}, []string(j.Features))

	var linked []client.Client
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/jumps/JMP001/clients/"+c.ID, nil), http.StatusOK, &linked)
	require.Len(t, linked, 1)

	var jumps []jump.Jump
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/clients/"+c.ID+"/jumps", nil), http.StatusOK, &jumps)
	require.Len(t, jumps, 1)

	testserver.Decode(t, ts.Do(t, http.MethodPut, "/api/jumps/JMP001/clients", map[string]any{"client_ids": []string{}}), http.StatusOK, &linked)
	require.Empty(t, linked)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "hero.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/jumps/JMP001/images", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	testserver.Decode(t, ts.Send(t, req), http.StatusCreated, &j)
	require.Len(t, j.Images, 1)
	require.True(t, strings.HasSuffix(j.Images[0], ".png"))

	resp := ts.Do(t, http.MethodGet, "/uploads/"+j.Images[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/uploads/missing.png", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	image := j.Images[0]
	testserver.Decode(t, ts.Do(t, http.MethodPut, "/api/jumps/JMP001", map[string]any{
		"features": []string{" seo ", "seo", "", "copywriting"},
		"images":   []string{"https://cdn.example.test/hero.png"},
	}), http.StatusOK, &j)
	require.Equal(t, []string{"seo", "copywriting"}, []string(j.Features))
	require.Equal(t, []string{"https://cdn.example.test/hero.png"}, []string(j.Images))

	resp = ts.Do(t, http.MethodGet, "/uploads/"+image, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "dropped image file is removed")

	resp = ts.Do(t, http.MethodDelete, "/api/jumps/JMP001", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestJumpImage_RejectsType(t *testing.T) {
	ts := testserver.New(t)
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/jumps", map[string]any{"name": "Launch Pack"}), http.StatusCreated, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "payload.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/jumps/JMP001/images", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.Equal(t, transport.CodeInvalidInput, testserver.ErrorCode(t, ts.Send(t, req), http.StatusBadRequest))
}

func TestProjectTasksAndCopilots(t *testing.T) {
	ts := testserver.New(t)
	c := createClient(t, ts, "Acme Bakery")
	p := createProject(t, ts, c.ID, "Website")
	require.Equal(t, "PRJ001", p.ID)

	var task project.Task
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/projects/PRJ001/tasks", map[string]any{
		"title":    "Wireframes",
		"due_date": "2024-06-01",
	}), http.StatusCreated, &task)
	require.Equal(t, "TSK001", task.ID)
	require.Equal(t, "PRJ001", task.ProjectID)

	testserver.Decode(t, ts.Do(t, http.MethodPut, "/api/tasks/TSK001", map[string]any{"status": "done"}), http.StatusOK, &task)
	require.Equal(t, "done", task.Status)

	var tasks []project.Task
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/tasks?project_id=PRJ001&status=done", nil), http.StatusOK, &tasks)
	require.Len(t, tasks, 1)

	var cp copilot.Copilot
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/copilots", map[string]any{
		"name":        "Rita",
		"specialties": []string{"seo", "copywriting"},
	}), http.StatusCreated, &cp)
	require.Equal(t, "COP001", cp.ID)

	var assigned []project.Assignment
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/projects/PRJ001/copilots/COP001", map[string]any{"role": "lead"}), http.StatusOK, &assigned)
	require.Len(t, assigned, 1)
	require.Equal(t, "lead", assigned[0].ProjectRole)

	var copilots []copilot.Copilot
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/copilots?specialty=seo", nil), http.StatusOK, &copilots)
	require.Len(t, copilots, 1)

	require.Equal(t, http.StatusNoContent, ts.Do(t, http.MethodDelete, "/api/projects/PRJ001/copilots/COP001", nil).StatusCode)
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/projects/PRJ001/copilots", nil), http.StatusOK, &assigned)
	require.Empty(t, assigned)
}

func TestInvoiceFlow(t *testing.T) {
	ts := testserver.New(t)
	c := createClient(t, ts, "Acme Bakery")

	code := testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/invoices", map[string]any{
		"client_id": c.ID,
		"items": []map[string]any{
			{"description": "Galaxy", "quantity": 1e200, "unit_price": 1e200},
		},
	}), http.StatusBadRequest)
	require.Equal(t, transport.CodeInvalidInput, code)

	var inv invoice.Invoice
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/invoices", map[string]any{
		"client_id":  c.ID,
		"issue_date": "2024-05-01",
		"items": []map[string]any{
			{"description": "Design", "quantity": 3, "unit_price": 33.34},
		},
	}), http.StatusCreated, &inv)
	require.Equal(t, "INV001", inv.ID)
	require.Equal(t, invoice.StatusDraft, inv.Status)
	require.InDelta(t, 100.02, inv.Total, 0.001)

	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/invoices/INV001/items", map[string]any{
		"description": "Hosting",
		"quantity":    1,
		"unit_price":  20,
	}), http.StatusCreated, &inv)
	require.InDelta(t, 120.02, inv.Total, 0.001)
	require.Len(t, inv.Items, 2)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/invoices/INV001/items", map[string]any{
		"description": "Galaxy",
		"quantity":    1e200,
		"unit_price":  1e200,
	}), http.StatusBadRequest)
	require.Equal(t, transport.CodeInvalidInput, code)

	testserver.Decode(t, ts.Do(t, http.MethodDelete, "/api/invoices/INV001/items/"+inv.Items[1].ID, nil), http.StatusOK, &inv)
	require.InDelta(t, 100.02, inv.Total, 0.001)

	testserver.Decode(t, ts.Do(t, http.MethodPut, "/api/invoices/INV001", map[string]any{"status": "sent"}), http.StatusOK, &inv)
	require.Equal(t, invoice.StatusSent, inv.Status)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/invoices/INV001/items", map[string]any{
		"description": "Late addition",
		"quantity":    1,
		"unit_price":  5,
	}), http.StatusConflict)
	require.Equal(t, transport.CodeConflict, code)

	code = testserver.ErrorCode(t, ts.Do(t, http.MethodPut, "/api/invoices/INV001", map[string]any{"status": "draft"}), http.StatusConflict)
	require.Equal(t, transport.CodeConflict, code)

	var invoices []invoice.Invoice
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/clients/"+c.ID+"/invoices?status=sent", nil), http.StatusOK, &invoices)
	require.Len(t, invoices, 1)
}

func TestReferralConvert(t *testing.T) {
	ts := testserver.New(t)
	c := createClient(t, ts, "Acme Bakery")

	var ref referral.Referral
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/referrals", map[string]any{
		"referrer_client_id": c.ID,
		"referred_name":      "Bella Florist",
		"referred_email":     "bella@example.test",
	}), http.StatusCreated, &ref)
	require.Equal(t, "REF001", ref.ID)

	var converted struct {
		Referral referral.Referral `json:"referral"`
		Client   client.Client     `json:"client"`
	}
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/referrals/REF001/convert", map[string]any{"sector": "retail"}), http.StatusCreated, &converted)
	require.Equal(t, "CLI002", converted.Client.ID)
	require.Equal(t, "Bella Florist", converted.Client.Name)
	require.Equal(t, "retail", converted.Client.Sector)
	require.Equal(t, "converted", converted.Referral.Status)

	code := testserver.ErrorCode(t, ts.Do(t, http.MethodPost, "/api/referrals/REF001/convert", nil), http.StatusConflict)
	require.Equal(t, transport.CodeConflict, code)

	var referrals []referral.Referral
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/referrals?referrer_client_id="+c.ID, nil), http.StatusOK, &referrals)
	require.Len(t, referrals, 1)
}

func TestAPIKeyScopes(t *testing.T) {
	ts := testserver.New(t)
	reader := ts.IssueKey(t, apikey.ScopeRead)
	writer := ts.IssueKey(t, apikey.ScopeWrite)

	require.Equal(t, transport.CodeUnauthorized, testserver.ErrorCode(t, ts.DoWithToken(t, "", http.MethodGet, "/api/clients", nil), http.StatusUnauthorized))
	require.Equal(t, transport.CodeUnauthorized, testserver.ErrorCode(t, ts.DoWithToken(t, "crm_bogus", http.MethodGet, "/api/clients", nil), http.StatusUnauthorized))

	require.Equal(t, http.StatusOK, ts.DoWithToken(t, reader, http.MethodGet, "/api/clients", nil).StatusCode)
	code := testserver.ErrorCode(t, ts.DoWithToken(t, reader, http.MethodPost, "/api/clients", map[string]any{"name": "Acme"}), http.StatusForbidden)
	require.Equal(t, transport.CodeForbidden, code)
	require.Equal(t, http.StatusCreated, ts.DoWithToken(t, writer, http.MethodPost, "/api/clients", map[string]any{"name": "Acme"}).StatusCode)

	code = testserver.ErrorCode(t, ts.DoWithToken(t, writer, http.MethodGet, "/api/api-keys", nil), http.StatusForbidden)
	require.Equal(t, transport.CodeForbidden, code)

	var issued apikey.Issued
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/api-keys", map[string]any{"name": "ci", "scopes": []string{"read"}}), http.StatusCreated, &issued)
	require.True(t, strings.HasPrefix(issued.Token, apikey.TokenPrefix))
	require.Equal(t, issued.Token[:len(issued.KeyPrefix)], issued.KeyPrefix)

	var keys []apikey.APIKey
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/api-keys", nil), http.StatusOK, &keys)
	require.Len(t, keys, 4)

	require.Equal(t, http.StatusNoContent, ts.Do(t, http.MethodDelete, "/api/api-keys/"+issued.ID, nil).StatusCode)
	resp := ts.DoWithToken(t, issued.Token, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthDisabled(t *testing.T) {
	ts := testserver.New(t, testserver.WithAuthDisabled())
	resp := ts.DoWithToken(t, "", http.MethodPost, "/api/clients", map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestReferenceAndActivity(t *testing.T) {
	ts := testserver.New(t)

	var values []reference.Value
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/reference/sector", nil), http.StatusOK, &values)
	require.Equal(t, "technology", values[0].Value)

	require.Equal(t, transport.CodeNotFound, testserver.ErrorCode(t, ts.Do(t, http.MethodGet, "/api/reference/colours", nil), http.StatusNotFound))

	writer := ts.IssueKey(t, apikey.ScopeWrite)
	resp := ts.DoWithToken(t, writer, http.MethodPost, "/api/reference/sector", map[string]any{"value": "logistics"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var added reference.Value
	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/reference/sector", map[string]any{"value": "logistics", "label": "Logistics"}), http.StatusCreated, &added)
	require.Equal(t, reference.CategorySector, added.Category)

	testserver.Decode(t, ts.Do(t, http.MethodPost, "/api/clients", map[string]any{"name": "Truckers", "sector": "logistics"}), http.StatusCreated, nil)

	var entries []activity.Entry
	testserver.Decode(t, ts.Do(t, http.MethodGet, "/api/activity?entity_type=client", nil), http.StatusOK, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, activity.ActionCreated, entries[0].Action)
}

func TestRateLimit(t *testing.T) {
	ts := testserver.New(t, testserver.WithRateLimit(0.001, 2))

	require.Equal(t, http.StatusOK, ts.Do(t, http.MethodGet, "/api/clients", nil).StatusCode)
	require.Equal(t, http.StatusOK, ts.Do(t, http.MethodGet, "/api/clients", nil).StatusCode)
	code := testserver.ErrorCode(t, ts.Do(t, http.MethodGet, "/api/clients", nil), http.StatusTooManyRequests)
	require.Equal(t, transport.CodeRateLimited, code)
}

func TestRateLimit_BadTokens(t *testing.T) {
	ts := testserver.New(t, testserver.WithRateLimit(0.001, 2))

	statuses := map[int]int{}
	for range 20 {
		statuses[ts.DoWithToken(t, "crm_wrong", http.MethodGet, "/api/clients", nil).StatusCode]++
	}
	require.Equal(t, 2, statuses[http.StatusUnauthorized])
	require.Equal(t, 18, statuses[http.StatusTooManyRequests])

	require.Equal(t, http.StatusTooManyRequests, ts.Do(t, http.MethodGet, "/api/clients", nil).StatusCode,
		"the address stays blocked for valid keys too")
}

func TestBodyTooLarge(t *testing.T) {
	ts := testserver.New(t)
	body := `{"name":"Acme","notes":"` + strings.Repeat("x", 2<<20) + `"}`

	// Served in process; over the wire the server may close before the
	// client finishes writing.
	req := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Server.Config.Handler.ServeHTTP(rec, req)

	code := testserver.ErrorCode(t, rec.Result(), http.StatusRequestEntityTooLarge)
	require.Equal(t, transport.CodeTooLarge, code)
}

func TestCORSPreflight(t *testing.T) {
	ts := testserver.New(t, testserver.WithCORS("https://app.example.test"))

	req, err := http.NewRequest(http.MethodOptions, ts.Server.URL+"/api/clients", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := ts.Send(t, req)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "https://app.example.test", resp.Header.Get("Access-Control-Allow-Origin"))
}
