// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/leadsplit/internal/adapters/auth"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListDependencies
	AgentDependencies
	AccountDependencies
}

// ListDependencies covers upload, the aggregated read and the export.
type ListDependencies interface {
	Upload(ctx context.Context, r io.Reader, filename string) (model.UploadResult, error)
	ListDistribution(ctx context.Context) ([]model.AgentDistribution, error)
	ExportAgent(ctx context.Context, agentID string) (model.AgentDistribution, error)
}

// AgentDependencies covers the agent directory.
type AgentDependencies interface {
	AddAgent(ctx context.Context, in model.AgentInput) (model.Agent, error)
	ListAgents(ctx context.Context) ([]model.Agent, error)
}

// AccountDependencies covers signup, login and password reset.
type AccountDependencies interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	Register(ctx context.Context, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (model.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	accountHandler *AccountHandler
	agentsHandler  *AgentsHandler
	listsHandler   *ListsHandler

	authenticate func(http.Handler) http.Handler
	corsOrigin   string
}

// NewServer creates a new API server with all handlers. Protected routes
// verify bearer tokens with iss.
func NewServer(deps Dependencies, statsProvider StatsProvider, iss *auth.Issuer, opts ...Option) *Server {
	o := options{uploadMaxBytes: DefaultUploadMaxBytes, corsOrigin: DefaultCORSOrigin}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(o.ready),
		statsHandler:   NewStatsHandler(statsProvider),
		accountHandler: NewAccountHandler(deps),
		agentsHandler:  NewAgentsHandler(deps),
		listsHandler:   NewListsHandler(deps, o.uploadMaxBytes),
		authenticate:   auth.Authenticate(iss),
		corsOrigin:     o.corsOrigin,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/health", MetricsMiddleware(s.healthHandler.HandleAPIHealth, "api_health"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/auth/send-otp", MetricsMiddleware(s.accountHandler.HandleSendOTP, "send_otp"))
	mux.HandleFunc("/api/auth/verify-otp", MetricsMiddleware(s.accountHandler.HandleVerifyOTP, "verify_otp"))
	mux.HandleFunc("/api/auth/register", MetricsMiddleware(s.accountHandler.HandleRegister, "register"))
	mux.HandleFunc("/api/auth/login", MetricsMiddleware(s.accountHandler.HandleLogin, "login"))
	mux.HandleFunc("/api/auth/forgot-password", MetricsMiddleware(s.accountHandler.HandleForgotPassword, "forgot_password"))
	mux.HandleFunc("/api/auth/reset-password", MetricsMiddleware(s.accountHandler.HandleResetPassword, "reset_password"))

	mux.HandleFunc("/api/agents/add", MetricsMiddleware(s.admin(s.agentsHandler.HandleAddAgent), "add_agent"))
	mux.HandleFunc("/api/agents", MetricsMiddleware(s.admin(s.agentsHandler.HandleListAgents), "list_agents"))

	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/api/lists/upload", MetricsMiddleware(s.admin(s.listsHandler.HandleUpload), "upload_list"))
	mux.HandleFunc("/api/lists/export", MetricsMiddleware(s.admin(s.listsHandler.HandleExport), "export_list"))
	mux.HandleFunc("/api/lists", MetricsMiddleware(s.admin(s.listsHandler.HandleListDistribution), "list_distribution"))

	logger.Get().Named("api").Debug(ctx, "routes registered")
}

// Handler wraps the routed mux with request logging and CORS.
func (s *Server) Handler(next http.Handler) http.Handler {
	return RequestLogger(CORS(s.corsOrigin)(next))
}

func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return s.authenticate(auth.AdminOnly(h)).ServeHTTP
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps err onto a status and writes it. Server-side failures are
// logged and their details withheld from the client.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.Int("status", status),
			logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, Wrap(op, err))
}
