package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/minbar/pkg/auth"
	"github.com/aretw0/minbar/pkg/core"
)

const maxRequestBodySize = 32 << 20 // image payloads arrive base64-encoded

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Detail: message})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[credentials](w, r)
	if !ok {
		return
	}
	if s.cfg.Accounts == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts not configured")
		return
	}
	token, err := s.cfg.Accounts.Register(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		if errors.Is(err, core.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("register failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[credentials](w, r)
	if !ok {
		return
	}
	if s.cfg.Accounts == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts not configured")
		return
	}
	token, err := s.cfg.Accounts.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error("login failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[core.Request](w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}
	if req.Context == nil {
		req.Context = core.Metadata{}
	}

	out := s.cfg.Actor.Act(r.Context(), req)
	s.logger.Info("act",
		"request_id", RequestID(r.Context()),
		"operator", Operator(r.Context()),
		"status", out.Status,
		"error_kind", out.Kind,
	)

	status := http.StatusOK
	if s.cfg.StatusCodes && out.Status == core.StatusError {
		status = StatusFor(out.Kind)
	}
	writeJSON(w, status, out)
}

type commitView struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if s.cfg.Commits == nil {
		writeError(w, http.StatusBadRequest, "commit history not available")
		return
	}
	commits, err := s.cfg.Commits.ListCommits(r.Context(), core.SiteRef{Owner: s.cfg.Owner, Name: slug}, DefaultCommitLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]commitView, 0, len(commits))
	for _, c := range commits {
		out = append(out, commitView{SHA: c.SHA, Message: c.Message, URL: c.URL})
	}
	writeJSON(w, http.StatusOK, out)
}

// StatusFor maps an error kind to the HTTP status used when status codes
// are enabled.
func StatusFor(kind core.Kind) int {
	switch kind {
	case core.KindMalformedPlan, core.KindMissingField, core.KindUnknownAction:
		return http.StatusUnprocessableEntity
	case core.KindMissingSiteIdentifier, core.KindInvalidArgument:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict, core.KindAlreadyExists:
		return http.StatusConflict
	case core.KindMarkersNotFound:
		return http.StatusUnprocessableEntity
	case core.KindRateLimited:
		return http.StatusTooManyRequests
	case core.KindAuth, core.KindNetwork, core.KindPlanner:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
