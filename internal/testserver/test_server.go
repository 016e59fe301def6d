package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/crmdesk/internal/config"
	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/sqlite"
	"github.com/rpggio/crmdesk/internal/transport"
	"github.com/rpggio/crmdesk/internal/uploads"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Services transport.Services
	// Token is an admin API key issued at startup.
	Token string
}

// Option adjusts the server before it starts.
type Option func(*transport.Options)

// WithRateLimit enables rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *transport.Options) {
		o.RateLimit = config.RateLimitConfig{RequestsPerSecond: rps, Burst: burst}
	}
}

// WithCORS allows the given origins.
func WithCORS(origins ...string) Option {
	return func(o *transport.Options) {
		o.CORS = config.CORSConfig{AllowedOrigins: origins}
	}
}

// WithAuthDisabled serves every request as an admin.
func WithAuthDisabled() Option {
	return func(o *transport.Options) {
		o.AuthEnabled = false
	}
}

func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	store, err := uploads.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	referenceSvc := reference.NewService(sqlite.NewReferenceRepository(db), time.Minute, nil)

	services := transport.Services{
		Clients:   client.NewService(sqlite.NewClientRepository(db), referenceSvc, activitySvc, nil),
		Jumps:     jump.NewService(sqlite.NewJumpRepository(db), referenceSvc, activitySvc, nil),
		Projects:  project.NewService(sqlite.NewProjectRepository(db), sqlite.NewTaskRepository(db), referenceSvc, activitySvc, nil),
		Invoices:  invoice.NewService(sqlite.NewInvoiceRepository(db), referenceSvc, activitySvc, nil),
		Copilots:  copilot.NewService(sqlite.NewCopilotRepository(db), referenceSvc, activitySvc, nil),
		Referrals: referral.NewService(sqlite.NewReferralRepository(db), referenceSvc, activitySvc, nil),
		APIKeys:   apikey.NewService(sqlite.NewAPIKeyRepository(db), activitySvc, nil),
		Reference: referenceSvc,
		Activity:  activitySvc,
		Uploads:   store,
	}

	options := transport.Options{AuthEnabled: true}
	for _, opt := range opts {
		opt(&options)
	}

	issued, err := services.APIKeys.Create(context.Background(), apikey.CreateRequest{
		Name:   "test admin",
		Scopes: []string{string(apikey.ScopeAdmin)},
	})
	require.NoError(t, err)

	server := httptest.NewServer(transport.NewServer(services, options))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Services: services,
		Token:    issued.Token,
	}
}

// IssueKey creates an API key with the given scopes and returns its token.
func (ts *TestServer) IssueKey(t *testing.T, scopes ...apikey.Scope) string {
	t.Helper()
	names := make([]string, len(scopes))
	for i, s := range scopes {
		names[i] = string(s)
	}
	issued, err := ts.Services.APIKeys.Create(context.Background(), apikey.CreateRequest{Name: "test key", Scopes: names})
	require.NoError(t, err)
	return issued.Token
}

// Do sends a JSON request with the admin token. A nil body sends none.
func (ts *TestServer) Do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	return ts.DoWithToken(t, ts.Token, method, path, body)
}

// DoWithToken sends a JSON request authenticated by token; an empty token
// sends no credentials.
func (ts *TestServer) DoWithToken(t *testing.T, token, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.send(t, req)
}

// Send executes a prepared request, adding the admin token when the request
// carries no credentials.
func (ts *TestServer) Send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if req.Header.Get("Authorization") == "" && req.Header.Get("X-API-Key") == "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
	return ts.send(t, req)
}

func (ts *TestServer) send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := ts.Server.Client().Do(req)
	require.NoError(t, err)

	// Buffer the body so callers never leak a connection.
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp
}

// Decode asserts the status and decodes the JSON body into dst.
func Decode(t *testing.T, resp *http.Response, status int, dst any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, status, resp.StatusCode, "body: %s", data)
	if dst != nil {
		require.NoError(t, json.Unmarshal(data, dst), "body: %s", data)
	}
}

// ErrorCode asserts the status and returns the error code of the body.
func ErrorCode(t *testing.T, resp *http.Response, status int) string {
	t.Helper()
	var body transport.ErrorBody
	Decode(t, resp, status, &body)
	return body.Error.Code
}
