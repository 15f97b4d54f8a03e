package main

import (
	"errors"
	"moviecatalog/proj/internal/services/reviews"
	"net/http"
)

// userId is accepted for older clients and must name the caller.
type createReviewPayload struct {
	Rating  *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	Review  string   `json:"review" validate:"required,max=5000"`
	MovieID int64    `json:"movieId" validate:"required,gt=0"`
	UserID  *int64   `json:"userId" validate:"omitempty,gt=0"`
}

type updateReviewPayload struct {
	Rating  *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Review  *string  `json:"review" validate:"omitempty,min=1,max=5000"`
	UserID  *int64   `json:"userId" validate:"omitempty,gt=0"`
	MovieID *int64   `json:"movieId" validate:"omitempty,gt=0"` // immutable, ignored
}

func (app *Application) listReviews(w http.ResponseWriter, r *http.Request) {
	list, err := app.services.Review.List(r.Context())
	if err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": list}, "")
}

func (app *Application) listMovieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "movieId")
	if !ok {
		return
	}
	list, err := app.services.Review.ListForMovie(r.Context(), movieID)
	if err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": list}, "")
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	review, err := app.services.Review.Get(r.Context(), id)
	if err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "")
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	principal := contextGetPrincipal(r)
	var payload createReviewPayload
	if !app.readAndValidate(w, r, &payload) {
		return
	}
	if payload.UserID != nil && *payload.UserID != principal.ID {
		app.Http.Forbidden(w, r, reviews.ErrForbidden.Error())
		return
	}
	review, err := app.services.Review.Create(r.Context(), principal, payload.MovieID, *payload.Rating, payload.Review)
	if err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"review": review}, "Review created successfully")
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	principal := contextGetPrincipal(r)
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	var payload updateReviewPayload
	if !app.readAndValidate(w, r, &payload) {
		return
	}
	if payload.UserID != nil && *payload.UserID != principal.ID {
		app.Http.Forbidden(w, r, reviews.ErrForbidden.Error())
		return
	}
	review, err := app.services.Review.Update(r.Context(), principal, id, payload.Rating, payload.Review)
	if err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "Review updated successfully")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	principal := contextGetPrincipal(r)
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.services.Review.Delete(r.Context(), principal, id); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Review deleted successfully")
}

func (app *Application) handleReviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrReviewNotFound), errors.Is(err, reviews.ErrMovieNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, reviews.ErrAlreadyReviewed):
		app.Http.Conflict(w, r, err.Error())
	case errors.Is(err, reviews.ErrForbidden):
		app.Http.Forbidden(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
