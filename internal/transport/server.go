package transport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
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
	"github.com/rpggio/crmdesk/internal/metrics"
	"github.com/rpggio/crmdesk/internal/uploads"
)

// Services are the domain services the API dispatches to.
type Services struct {
	Clients   *client.Service
	Jumps     *jump.Service
	Projects  *project.Service
	Invoices  *invoice.Service
	Copilots  *copilot.Service
	Referrals *referral.Service
	APIKeys   *apikey.Service
	Reference *reference.Service
	Activity  *activity.Service
	Uploads   *uploads.Store
}

// Options configure the middleware stack.
type Options struct {
	AuthEnabled bool
	CORS        config.CORSConfig
	RateLimit   config.RateLimitConfig
	Logger      *slog.Logger
}

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewServer creates the HTTP router with middleware.
func NewServer(svc Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ObserveMiddleware(logger))
	r.Use(CORSMiddleware(opts.CORS))

	r.Get("/health", srv.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	limiter := NewRateLimiter(opts.RateLimit)

	r.Group(func(r chi.Router) {
		r.Use(limiter.AuthFailures)
		r.Use(AuthMiddleware(svc.APIKeys, opts.AuthEnabled))
		r.Use(limiter.Handler)

		r.Get("/uploads/{name}", srv.handleUpload)

		r.Route("/api", func(r chi.Router) {
			r.Use(limitJSONBody)

			r.Route("/clients", srv.clientRoutes)
			r.Route("/jumps", srv.jumpRoutes)
			r.Route("/projects", srv.projectRoutes)
			r.Route("/tasks", srv.taskRoutes)
			r.Route("/invoices", srv.invoiceRoutes)
			r.Route("/copilots", srv.copilotRoutes)
			r.Route("/referrals", srv.referralRoutes)
			r.Route("/reference", srv.referenceRoutes)
			r.Get("/activity", srv.handleListActivity)

			r.Route("/api-keys", func(r chi.Router) {
				r.Use(RequireScope(apikey.ScopeAdmin))
				srv.apiKeyRoutes(r)
			})
		})
	})

	return r
}

// limitJSONBody caps JSON bodies. Multipart uploads are bounded by the upload store.
func limitJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && !isMultipart(r) {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
