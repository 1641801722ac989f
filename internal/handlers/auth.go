package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/inkpress/blogapi/internal/auth"
	"github.com/inkpress/blogapi/internal/services"
	"github.com/inkpress/blogapi/internal/store"
	"github.com/inkpress/blogapi/types"
	"github.com/rs/zerolog"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID int64, username, userType string) (string, error)
	Parse(token string) (*auth.Claims, error)
}

// IdentityProvider runs an external OAuth2 login.
type IdentityProvider interface {
	AuthURL(state string, scopes ...string) string
	Exchange(ctx context.Context, code string) (auth.Identity, error)
}

// AuthHandler provides local and Google authentication endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      TokenIssuer
	identity    IdentityProvider
	frontendURL string
	logger      zerolog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens TokenIssuer, identity IdentityProvider, frontendURL string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		identity:    identity,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/auth/google", handler.GoogleLogin)
	r.Get("/auth/google/callback", handler.GoogleCallback)
	r.With(RequireAuth(handler.tokens)).Get("/me", handler.Me)
}

// RequireAuth enforces bearer token authentication and injects the claims into context.
func RequireAuth(tokens TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new user account and returns a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.UserType = strings.TrimSpace(req.UserType)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password, req.UserType)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already exists")
		default:
			h.logger.Error().Err(err).Str("username", req.Username).Msg("register user")
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.logger.Error().Err(err).Str("username", req.Username).Msg("authenticate user")
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

// Me returns the claims of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp := MeResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
		UserType: claims.UserType,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user types.User) {
	token, err := h.tokens.Issue(user.ID, user.Username, user.UserType)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("issue token")
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, status, AuthResponse{Token: token, User: user.Public()})
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  types.PublicUser `json:"user"`
}

type MeResponse struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	UserType  string    `json:"userType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
