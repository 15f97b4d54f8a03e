package main

import (
	"errors"
	"moviecatalog/proj/internal/services/accounts"
	"net/http"
)

type updateAdminPayload struct {
	Username *string `json:"username" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

func (app *Application) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := app.services.Admins.List(r.Context())
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"admins": admins}, "")
}

func (app *Application) getAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	admin, err := app.services.Admins.Get(r.Context(), id)
	if err != nil {
		app.handleAccountError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"admin": admin}, "")
}

func (app *Application) updateAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	var payload updateAdminPayload
	if !app.readAndValidate(w, r, &payload) {
		return
	}
	admin, err := app.services.Admins.Update(r.Context(), id, accounts.UpdateParams{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		app.handleAccountError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"admin": admin}, "Admin updated successfully")
}

func (app *Application) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.services.Admins.Delete(r.Context(), id); err != nil {
		app.handleAccountError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Admin deleted successfully")
}

func (app *Application) handleAccountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, accounts.ErrAccountAlreadyExists):
		app.Http.Conflict(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
