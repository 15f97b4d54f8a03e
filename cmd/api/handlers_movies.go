package main

import (
	"errors"
	"io"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/storage/posters"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

// multipart overhead allowed on top of the poster itself
const movieFormFieldsLimit = 1 << 20

type createMovieForm struct {
	Name        string       `schema:"name" json:"name" validate:"required,max=255"`
	Director    string       `schema:"director" json:"director" validate:"required,max=255"`
	ReleaseDate *fields.Date `schema:"release_date" json:"release_date" validate:"required"`
	Genre       string       `schema:"genre" json:"genre" validate:"required,max=100"`
	Duration    int32        `schema:"duration" json:"duration" validate:"required,gt=0"`
	Synopsis    *string      `schema:"synopsis" json:"synopsis" validate:"omitempty,max=5000"`
	Cast        string       `schema:"cast" json:"cast" validate:"required,max=2000"`
}

type updateMovieForm struct {
	Name        *string      `schema:"name" json:"name" validate:"omitempty,min=1,max=255"`
	Director    *string      `schema:"director" json:"director" validate:"omitempty,min=1,max=255"`
	ReleaseDate *fields.Date `schema:"release_date" json:"release_date"`
	Genre       *string      `schema:"genre" json:"genre" validate:"omitempty,min=1,max=100"`
	Duration    *int32       `schema:"duration" json:"duration" validate:"omitempty,gt=0"`
	Synopsis    *string      `schema:"synopsis" json:"synopsis" validate:"omitempty,max=5000"`
	Cast        *string      `schema:"cast" json:"cast" validate:"omitempty,min=1,max=2000"`
}

type listMoviesQuery struct {
	Name     string `schema:"name" json:"name" validate:"max=255"`
	Genre    string `schema:"genre" json:"genre" validate:"max=100"`
	Page     int    `schema:"page" json:"page" validate:"gte=1,lte=10000000"`
	PageSize int    `schema:"page_size" json:"page_size" validate:"gte=1,lte=100"`
	Sort     string `schema:"sort" json:"sort" validate:"sortbymoviefield"`
}

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	query := listMoviesQuery{Page: 1, PageSize: 20, Sort: "id"}
	if !app.decodeForm(w, r, &query, r.URL.Query()) || !app.validate(w, r, &query) {
		return
	}
	list, metadata, err := app.services.Movies.List(r.Context(), query.Name, query.Genre, filters.Filters{
		Page:         query.Page,
		PageSize:     query.PageSize,
		Sort:         query.Sort,
		SortSafelist: models.MovieSortSafelist,
	})
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"movies": list, "metadata": metadata}, "")
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	movie, err := app.services.Movies.Get(r.Context(), id)
	if err != nil {
		app.handleMovieError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "")
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	var form createMovieForm
	poster, cleanup, ok := app.parseMovieForm(w, r, &form)
	if !ok {
		return
	}
	defer cleanup()
	movie, err := app.services.Movies.Create(r.Context(), movies.CreateParams{
		Name:        form.Name,
		Director:    form.Director,
		ReleaseDate: *form.ReleaseDate,
		Genre:       form.Genre,
		Duration:    form.Duration,
		Synopsis:    form.Synopsis,
		Cast:        form.Cast,
	}, poster)
	if err != nil {
		app.handleMovieError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"movie": movie}, "Movie created successfully")
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	var form updateMovieForm
	poster, cleanup, ok := app.parseMovieForm(w, r, &form)
	if !ok {
		return
	}
	defer cleanup()
	movie, err := app.services.Movies.Update(r.Context(), id, movies.UpdateParams{
		Name:        form.Name,
		Director:    form.Director,
		ReleaseDate: form.ReleaseDate,
		Genre:       form.Genre,
		Duration:    form.Duration,
		Synopsis:    form.Synopsis,
		Cast:        form.Cast,
	}, poster)
	if err != nil {
		app.handleMovieError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"movie": movie}, "Movie updated successfully")
}

func (app *Application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.services.Movies.Delete(r.Context(), id); err != nil {
		app.handleMovieError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Movie deleted successfully")
}

// parseMovieForm decodes the text fields of a multipart (or urlencoded) movie form into dst
// and returns the optional "poster" file. The returned reader is nil when no file was sent.
// cleanup releases temporary files held by the parsed form.
func (app *Application) parseMovieForm(w http.ResponseWriter, r *http.Request, dst any) (poster io.Reader, cleanup func(), ok bool) {
	cleanup = func() {}
	r.Body = http.MaxBytesReader(w, r.Body, app.cfg.Uploads.MaxPosterSize+movieFormFieldsLimit)
	err := r.ParseMultipartForm(movieFormFieldsLimit)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			app.Http.BadRequest(w, r, posters.ErrTooLarge.Error())
			return nil, cleanup, false
		}
		app.Http.BadRequest(w, r, "invalid form body: "+err.Error())
		return nil, cleanup, false
	}
	if r.MultipartForm != nil {
		form := r.MultipartForm
		cleanup = func() { form.RemoveAll() }
	}
	if !app.decodeForm(w, r, dst, r.PostForm) || !app.validate(w, r, dst) {
		cleanup()
		return nil, func() {}, false
	}
	if r.MultipartForm == nil {
		return nil, cleanup, true
	}
	file, header, err := r.FormFile("poster")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, cleanup, true
		}
		cleanup()
		app.Http.BadRequest(w, r, "invalid poster: "+err.Error())
		return nil, func() {}, false
	}
	if header.Size > app.cfg.Uploads.MaxPosterSize {
		file.Close()
		cleanup()
		app.Http.BadRequest(w, r, posters.ErrTooLarge.Error())
		return nil, func() {}, false
	}
	release := cleanup
	return file, func() {
		file.Close()
		release()
	}, true
}

// decodeForm fills dst from url values, writing a 422 with the offending fields on failure.
func (app *Application) decodeForm(w http.ResponseWriter, r *http.Request, dst any, values url.Values) bool {
	if err := app.formDecoder.Decode(dst, values); err != nil {
		var multiErr schema.MultiError
		if errors.As(err, &multiErr) {
			errs := make(map[string]string, len(multiErr))
			for field := range multiErr {
				errs[field] = "Invalid value"
			}
			app.Http.UnprocessableEntity(w, r, errs)
			return false
		}
		app.Http.BadRequest(w, r, err.Error())
		return false
	}
	return true
}

func (app *Application) handleMovieError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, movies.ErrMovieNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, movies.ErrMovieAlreadyExists):
		app.Http.Conflict(w, r, err.Error())
	case errors.Is(err, posters.ErrUnsupportedType), errors.Is(err, posters.ErrTooLarge):
		app.Http.BadRequest(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
