package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"CandyShop/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Log  *zap.Logger
	Auth *Service

	// Optional rate limiting middleware; nil means unlimited.
	LoginLimit    func(http.Handler) http.Handler
	RegisterLimit func(http.Handler) http.Handler
}

func (s *Server) Routes(r chi.Router) {
	r.With(middlewareOrNoop(s.RegisterLimit)).Post("/register", s.handleRegister)
	r.With(middlewareOrNoop(s.LoginLimit)).Post("/login", s.handleLogin)
	r.Get("/whoami", s.handleWhoAmI)
}

func middlewareOrNoop(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

type userResp struct {
	Message     string     `json:"message"`
	User        PublicUser `json:"user"`
	AccessToken string     `json:"access_token,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.Auth.Register(r.Context(), req)
	if err != nil {
		kit.WriteErr(w, r, s.Log, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, userResp{
		Message: "user registered",
		User:    Public(u),
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeJSON(w, r, &req) {
		return
	}

	u, tok, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		kit.WriteErr(w, r, s.Log, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, userResp{
		Message:     "login successful",
		User:        Public(u),
		AccessToken: tok,
	})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := s.Auth.JWT.Parse(tok)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token")
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": claims.UserID,
		"email":   claims.Email,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
