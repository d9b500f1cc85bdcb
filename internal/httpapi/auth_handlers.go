package httpapi

import (
	"net/http"

	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/service"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

func toTokens(t *service.Tokens) tokensResponse {
	return tokensResponse{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken, User: toUser(t.User)}
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	tokens, err := a.svc.Auth.Login(r.Context(), req.Mail, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toTokens(tokens))
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	tokens, err := a.svc.Auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Mail:     req.Mail,
		Password: req.Password,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, toTokens(tokens))
}

// refresh reads the refresh token from the Authorization header.
func (a *api) refresh(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		middleware.WriteError(w, apperr.Unauthorized("refresh token required"))
		return
	}
	access, err := a.svc.Auth.Refresh(r.Context(), token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, accessTokenResponse{AccessToken: access})
}

func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Auth.Logout(r.Context(), caller(r)); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ok(w, "logged out")
}
