package movies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type MoviesStorage interface {
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	List(ctx context.Context, name, genre string, filters filters.Filters) ([]models.Movie, int, error)
	Update(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

type PosterStore interface {
	Save(r io.Reader) (string, error)
	Remove(ref string) error
}

type MovieService struct {
	log     *slog.Logger
	storage MoviesStorage
	posters PosterStore
}

func New(log *slog.Logger, storage MoviesStorage, posters PosterStore) *MovieService {
	return &MovieService{
		log:     log,
		storage: storage,
		posters: posters,
	}
}

type CreateParams struct {
	Name        string
	Director    string
	ReleaseDate fields.Date
	Genre       string
	Duration    int32
	Synopsis    *string
	Cast        string
}

type UpdateParams struct {
	Name        *string
	Director    *string
	ReleaseDate *fields.Date
	Genre       *string
	Duration    *int32
	Synopsis    *string
	Cast        *string
}

func (s *MovieService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) List(ctx context.Context, name, genre string, filters filters.Filters) ([]models.Movie, filters.Metadata, error) {
	const op = "movies.MovieService.List"
	log := s.log.With("op", op)
	movies, total, err := s.storage.List(ctx, name, genre, filters)
	if err != nil {
		log.Error(err.Error())
		return nil, filtersMetadata(0, filters), err
	}
	return movies, filtersMetadata(total, filters), nil
}

// Create stores the poster first, so a failed insert has to remove it again.
func (s *MovieService) Create(ctx context.Context, params CreateParams, poster io.Reader) (*models.Movie, error) {
	const op = "movies.MovieService.Create"
	log := s.log.With("op", op, "name", params.Name)
	movie := &models.Movie{
		Name:        params.Name,
		Director:    params.Director,
		ReleaseDate: params.ReleaseDate,
		Genre:       params.Genre,
		Duration:    params.Duration,
		Synopsis:    params.Synopsis,
		Cast:        params.Cast,
	}
	if poster != nil {
		ref, err := s.posters.Save(poster)
		if err != nil {
			log.Info("poster rejected", "reason", err.Error())
			return nil, err
		}
		movie.Poster = &ref
	}
	created, err := s.storage.Insert(ctx, movie)
	if err != nil {
		s.removePoster(log, movie.Poster)
		if errors.Is(err, storage.ErrConflict) {
			log.Info("movie already exists")
			return nil, ErrMovieAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return created, nil
}

// Update replaces the poster when one is given. The previous file is removed
// only after the row points at the new one.
func (s *MovieService) Update(ctx context.Context, id int64, params UpdateParams, poster io.Reader) (*models.Movie, error) {
	const op = "movies.MovieService.Update"
	log := s.log.With("op", op, "id", id)
	movie, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		movie.Name = *params.Name
	}
	if params.Director != nil {
		movie.Director = *params.Director
	}
	if params.ReleaseDate != nil {
		movie.ReleaseDate = *params.ReleaseDate
	}
	if params.Genre != nil {
		movie.Genre = *params.Genre
	}
	if params.Duration != nil {
		movie.Duration = *params.Duration
	}
	if params.Synopsis != nil {
		movie.Synopsis = params.Synopsis
	}
	if params.Cast != nil {
		movie.Cast = *params.Cast
	}
	oldPoster := movie.Poster
	var newPoster *string
	if poster != nil {
		ref, err := s.posters.Save(poster)
		if err != nil {
			log.Info("poster rejected", "reason", err.Error())
			return nil, err
		}
		newPoster = &ref
		movie.Poster = newPoster
	}
	updatedMovie, err := s.storage.Update(ctx, movie)
	if err != nil {
		s.removePoster(log, newPoster)
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("movie already exists")
			return nil, ErrMovieAlreadyExists
		case errors.Is(err, storage.ErrNotFound):
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error("Error updating movie: " + err.Error())
		return nil, err
	}
	if newPoster != nil {
		s.removePoster(log, oldPoster)
	}
	return updatedMovie, nil
}

func (s *MovieService) Delete(ctx context.Context, id int64) error {
	const op = "movies.MovieService.Delete"
	log := s.log.With("op", op, "id", id)
	movie, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error(err.Error())
		return err
	}
	s.removePoster(log, movie.Poster)
	return nil
}

// removePoster is best effort: failures are logged and never returned.
func (s *MovieService) removePoster(log *slog.Logger, ref *string) {
	if ref == nil || *ref == "" {
		return
	}
	if err := s.posters.Remove(*ref); err != nil {
		log.Error("Error removing poster file", "poster", *ref, "errMsg", err.Error())
	}
}

func filtersMetadata(total int, f filters.Filters) filters.Metadata {
	return filters.CalculateMetadata(total, f.Page, f.PageSize)
}
