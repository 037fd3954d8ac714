package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"premium-unlock/internal/domain/model"
	"premium-unlock/internal/usecase"
)

// AdminServer is the operator surface: session login, code minting, code
// deletion, and counts for the dashboard. It gates generate before the
// core is invoked.
type AdminServer struct {
	codeUC   *usecase.CodeUseCase
	statsUC  *usecase.StatsUseCase
	auth     *AuthManager
	password string
	log      *zerolog.Logger
}

func NewAdminServer(codeUC *usecase.CodeUseCase, statsUC *usecase.StatsUseCase, auth *AuthManager, password string, logger *zerolog.Logger) *AdminServer {
	return &AdminServer{codeUC: codeUC, statsUC: statsUC, auth: auth, password: password, log: logger}
}

func (s *AdminServer) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log))

	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/admin/login", s.handleLogin)
	r.Post("/api/v1/admin/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.RequireAdmin)
		r.Post("/api/v1/admin/codes", s.handleGenerate)
		r.Delete("/api/v1/admin/codes/{code}", s.handleDelete)
		r.Get("/api/v1/admin/stats", s.handleStats)
	})
	return r
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *AdminServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
		return
	}
	if s.password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.password)) != 1 {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	tok, err := s.auth.Mint(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *AdminServer) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	DurationSpec string `json:"duration_spec"`
}

type generateResponse struct {
	Code                   string    `json:"code"`
	CodeValidUntil         time.Time `json:"code_valid_until"`
	PremiumDurationSeconds int64     `json:"premium_duration_seconds"`
}

func (s *AdminServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
		return
	}
	code, err := s.codeUC.Generate(r.Context(), model.DurationSpec(req.DurationSpec))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{
		Code:                   code.Code,
		CodeValidUntil:         code.CodeValidUntil,
		PremiumDurationSeconds: code.PremiumDurationSeconds,
	})
}

func (s *AdminServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.codeUC.Delete(r.Context(), code); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.statsUC.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
