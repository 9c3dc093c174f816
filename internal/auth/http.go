package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductAdmin/pkg/kit"
)

const (
	DefaultTokenTTL  = 15 * time.Minute
	loginLimitPerMin = 5
)

type Server struct {
	Log     *zap.Logger
	Admin   *Admin
	JWT     *TokenMaker
	TTL     time.Duration
	Limiter *kit.RateLimiter
}

func NewServer(log *zap.Logger, admin *Admin, tm *TokenMaker, ttl time.Duration) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Server{
		Log:     log,
		Admin:   admin,
		JWT:     tm,
		TTL:     ttl,
		Limiter: kit.NewRateLimiter(loginLimitPerMin, time.Minute),
	}
}

// Routes is mounted under /auth.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	login := http.Handler(http.HandlerFunc(s.handleLogin))
	if s.Limiter != nil {
		login = s.Limiter.Middleware(login)
	}
	r.Method(http.MethodPost, "/login", login)
	r.With(RequireAdmin(s.JWT)).Get("/whoami", s.handleWhoAmI)

	return r
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "username/password required", nil)
		return
	}

	if err := s.Admin.Verify(req.Username, req.Password); err != nil {
		s.Log.Warn("login rejected", zap.String("username", req.Username), zap.String("remote", kit.ClientIP(r)))
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	tok, err := s.JWT.New(req.Username, RoleAdmin, s.TTL)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok, ExpiresIn: int(s.TTL.Seconds())})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	c, _ := ClaimsFrom(r.Context())
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"username": c.Username,
		"role":     c.Role,
	})
}
