package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nexusapp/nexus/internal/services"
	"github.com/nexusapp/nexus/internal/session"
)

// Login redirects to the Discord authorization URL with server-side state.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	result, err := h.authService.StartLogin(ctx)
	if err != nil {
		logger.Error("failed to start discord login", "error", err)
		http.Redirect(w, r, h.frontendRedirectURL("error=oauth_failed"), http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, result.AuthorizationURL, http.StatusTemporaryRedirect)
}

// Callback handles the OAuth redirect back from Discord: it exchanges the
// code, fetches the profile, seeds the user's ledger entry and creates the
// session, then sends the browser back to the frontend. All failure paths
// redirect with a generic marker; provider details stay in the server log.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		logger.Warn("oauth callback without code")
		http.Redirect(w, r, h.frontendRedirectURL("error=no_code"), http.StatusTemporaryRedirect)
		return
	}

	// The frontend may link straight to Discord without going through
	// /auth/login, so state is enforced only when present.
	if state := strings.TrimSpace(r.URL.Query().Get("state")); state != "" {
		if err := h.authService.ValidateState(ctx, state); err != nil {
			logger.Warn("oauth state validation failed", "error", err)
			http.Redirect(w, r, h.frontendRedirectURL("error=oauth_failed"), http.StatusTemporaryRedirect)
			return
		}
	}

	user, err := h.authService.CompleteLogin(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuthCodeExchange):
			logger.Error("discord code exchange failed", "error", err)
		case errors.Is(err, services.ErrAuthGetDiscordUser):
			logger.Error("discord profile fetch failed", "error", err)
		default:
			logger.Error("discord login failed", "error", err)
		}
		http.Redirect(w, r, h.frontendRedirectURL("error=oauth_failed"), http.StatusTemporaryRedirect)
		return
	}

	entry := h.ledgerStore.GetOrCreate(user.ID)

	sessionData := &session.Data{
		UserID:    user.ID,
		Username:  user.DisplayName(),
		AvatarURL: user.AvatarURL(),
	}
	if _, err := h.sessionManager.CreateSession(ctx, w, sessionData); err != nil {
		logger.Error("failed to create session", "error", err)
		http.Redirect(w, r, h.frontendRedirectURL("error=oauth_failed"), http.StatusTemporaryRedirect)
		return
	}

	logger.Info("user logged in", "user_id", user.ID, "username", sessionData.Username, "balance", entry.Balance)

	http.Redirect(w, r, h.frontendRedirectURL("login=success"), http.StatusTemporaryRedirect)
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Balance  int    `json:"balance"`
}

// Me returns the logged-in user with a fresh ledger balance.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := h.sessionFromRequest(ctx, r)
	if sess == nil {
		h.writeError(ctx, w, http.StatusUnauthorized, "Not logged in")
		return
	}

	entry := h.ledgerStore.GetOrCreate(sess.UserID)

	h.writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"user": userPayload{
			ID:       sess.UserID,
			Username: sess.Username,
			Avatar:   sess.AvatarURL,
			Balance:  entry.Balance,
		},
	})
}

// Logout destroys the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.sessionManager.DestroySession(ctx, w, r); err != nil {
		h.loggerFromContext(ctx).Error("failed to destroy session", "error", err)
		h.writeError(ctx, w, http.StatusInternalServerError, "Logout failed")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true})
}
