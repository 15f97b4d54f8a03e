package main

import (
	"errors"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/services/auth"
	"net/http"
	"time"
)

const refreshCookieName = "refreshToken"

type registerPayload struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required_without=Username,max=255"`
	Username string `json:"username" validate:"required_without=Email,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

func (p *loginPayload) login() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Username
}

func (app *Application) registerAdmin(w http.ResponseWriter, r *http.Request) {
	if !app.cfg.Auth.AllowAdminSignup {
		app.Http.Forbidden(w, r, "Admin registration is disabled")
		return
	}
	app.register(w, r, models.RoleAdmin)
}

func (app *Application) registerUser(w http.ResponseWriter, r *http.Request) {
	app.register(w, r, models.RoleUser)
}

func (app *Application) register(w http.ResponseWriter, r *http.Request, role models.Role) {
	var payload registerPayload
	if !app.readAndValidate(w, r, &payload) {
		return
	}
	account, err := app.services.Auth.Register(r.Context(), role, payload.Username, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountAlreadyExists) {
			app.Http.Conflict(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"user": account.Safe()}, "Registered successfully")
}

func (app *Application) loginAdmin(w http.ResponseWriter, r *http.Request) {
	app.login(w, r, models.RoleAdmin)
}

func (app *Application) loginUser(w http.ResponseWriter, r *http.Request) {
	app.login(w, r, models.RoleUser)
}

func (app *Application) login(w http.ResponseWriter, r *http.Request, role models.Role) {
	var payload loginPayload
	if !app.readAndValidate(w, r, &payload) {
		return
	}
	session, err := app.services.Auth.Login(r.Context(), role, payload.login(), payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.Http.BadRequest(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	http.SetCookie(w, app.newRefreshCookie(session.RefreshToken))
	app.Http.Ok(w, r, envelop{
		"accessToken":  session.AccessToken,
		"safeUserData": session.User,
	}, "Logged in successfully")
}

// refreshToken exchanges the refresh cookie for a new access token.
func (app *Application) refreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		app.Http.Unauthorized(w, r, "Refresh token is missing")
		return
	}
	accessToken, err := app.services.Auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshTokenRevoked), errors.Is(err, auth.ErrInvalidToken):
			app.Http.Forbidden(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"accessToken": accessToken}, "")
}

func (app *Application) logoutAdmin(w http.ResponseWriter, r *http.Request) {
	app.logout(w, r, models.RoleAdmin)
}

func (app *Application) logoutUser(w http.ResponseWriter, r *http.Request) {
	app.logout(w, r, models.RoleUser)
}

// logout is idempotent: a missing cookie or an unknown session is a 204.
func (app *Application) logout(w http.ResponseWriter, r *http.Request, role models.Role) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		app.Http.NoContent(w, r)
		return
	}
	if err := app.services.Auth.Logout(r.Context(), role, cookie.Value); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			http.SetCookie(w, app.expiredRefreshCookie())
			app.Http.NoContent(w, r)
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	http.SetCookie(w, app.expiredRefreshCookie())
	app.Http.Ok(w, r, nil, "Logged out successfully")
}

func (app *Application) newRefreshCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   app.services.Auth.RefreshTTLSeconds(),
		HttpOnly: true,
		Secure:   app.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
}

func (app *Application) expiredRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   app.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
}
