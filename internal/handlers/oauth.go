package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/inkpress/blogapi/internal/auth"
	"github.com/inkpress/blogapi/internal/store"
	"github.com/inkpress/blogapi/types"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * 60
)

// GoogleLogin redirects the browser to the Google consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.identity.AuthURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the authorization-code flow and hands a token to the frontend.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})

	identity, err := h.identity.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("google exchange")
		writeError(w, http.StatusInternalServerError, "failed to authenticate with Google")
		return
	}

	var (
		userID   int64
		username = identity.Name
		userType = types.DefaultUserType
	)
	user, err := h.userService.GetByEmail(r.Context(), identity.Email)
	switch {
	case err == nil:
		userID, username, userType = user.ID, user.Username, user.UserType
	case errors.Is(err, store.ErrNotFound):
		if username == "" {
			username = identity.Email
		}
	default:
		h.logger.Error().Err(err).Str("email", identity.Email).Msg("lookup google user")
		writeError(w, http.StatusInternalServerError, "failed to authenticate with Google")
		return
	}

	token, err := h.tokens.Issue(userID, username, userType)
	if err != nil {
		h.logger.Error().Err(err).Str("email", identity.Email).Msg("issue token")
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	target, err := frontendRedirect(h.frontendURL, token, identity)
	if err != nil {
		h.logger.Error().Err(err).Str("frontend_url", h.frontendURL).Msg("build frontend redirect")
		writeError(w, http.StatusInternalServerError, "invalid frontend url")
		return
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func frontendRedirect(base, token string, identity auth.Identity) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("name", identity.Name)
	q.Set("email", identity.Email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
