package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"premium-unlock/internal/config"
	"premium-unlock/internal/infra/logging"
	red "premium-unlock/internal/infra/redis"
	"premium-unlock/internal/usecase"
)

// Server is the public surface the mobile client talks to: redeem a code,
// poll token liveness. Each route maps 1:1 onto a core operation.
type Server struct {
	redeemUC *usecase.RedeemUseCase
	tokenUC  *usecase.TokenUseCase
	limiter  *red.RateLimiter
	cfg      config.APIConfig
	log      *zerolog.Logger
}

func NewServer(redeemUC *usecase.RedeemUseCase, tokenUC *usecase.TokenUseCase, limiter *red.RateLimiter, cfg config.APIConfig, logger *zerolog.Logger) *Server {
	return &Server{redeemUC: redeemUC, tokenUC: tokenUC, limiter: limiter, cfg: cfg, log: logger}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log), Timeout(s.cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limit("redeem")).Post("/redeem", s.handleRedeem)
		r.With(s.limit("status")).Get("/premium/status", s.handleStatus)
	})
	return r
}

func (s *Server) limit(route string) Middleware {
	return RateLimit(s.limiter, route, s.cfg.RateLimit, s.cfg.RateWindow, s.log)
}

type redeemRequest struct {
	OwnerID string `json:"owner_id"`
	Code    string `json:"code"`
}

type redeemResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
		return
	}
	ctx := logging.WithOwnerID(r.Context(), req.OwnerID)

	tok, err := s.redeemUC.Redeem(ctx, req.OwnerID, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redeemResponse{Token: tok.Token, ExpiresAt: tok.ExpiresAt})
}

type statusResponse struct {
	Active           bool      `json:"active"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	st, err := s.tokenUC.Check(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Active:           st.Active,
		ExpiresAt:        st.ExpiresAt,
		RemainingSeconds: st.RemainingSeconds,
	})
}
