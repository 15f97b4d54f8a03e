package reviews

import (
	"context"
	"errors"
	"log/slog"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type ReviewStorage interface {
	Insert(ctx context.Context, review *models.Review) (int64, error)
	Get(ctx context.Context, id int64) (*models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
	ListForMovie(ctx context.Context, movieID int64) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
}

type ReviewService struct {
	log     *slog.Logger
	storage ReviewStorage
}

func New(log *slog.Logger, storage ReviewStorage) *ReviewService {
	return &ReviewService{
		log:     log,
		storage: storage,
	}
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	const op = "reviews.ReviewService.Get"
	log := s.log.With("op", op, "id", id)
	review, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	const op = "reviews.ReviewService.List"
	reviews, err := s.storage.List(ctx)
	if err != nil {
		s.log.Error(err.Error(), "op", op)
		return nil, err
	}
	return reviews, nil
}

func (s *ReviewService) ListForMovie(ctx context.Context, movieID int64) ([]models.Review, error) {
	const op = "reviews.ReviewService.ListForMovie"
	reviews, err := s.storage.ListForMovie(ctx, movieID)
	if err != nil {
		s.log.Error(err.Error(), "op", op, "movie_id", movieID)
		return nil, err
	}
	return reviews, nil
}

// Create stores a review authored by principal. The (author, movie) pair is unique;
// the storage constraint is the only duplicate check.
func (s *ReviewService) Create(ctx context.Context, principal *models.Principal, movieID int64, rating float64, text string) (*models.Review, error) {
	const op = "reviews.ReviewService.Create"
	log := s.log.With("op", op, "user_id", principal.ID, "movie_id", movieID)
	id, err := s.storage.Insert(ctx, &models.Review{
		Rating:  rating,
		Review:  text,
		UserID:  principal.ID,
		MovieID: movieID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("movie already reviewed")
			return nil, ErrAlreadyReviewed
		case errors.Is(err, storage.ErrForeignKey):
			log.Info("movie does not exist")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ReviewService) Update(ctx context.Context, principal *models.Principal, id int64, rating *float64, text *string) (*models.Review, error) {
	const op = "reviews.ReviewService.Update"
	log := s.log.With("op", op, "id", id, "user_id", principal.ID)
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanUpdate(principal, review) {
		log.Warn("update of foreign review rejected", "owner_id", review.UserID)
		return nil, ErrForbidden
	}
	if rating != nil {
		review.Rating = *rating
	}
	if text != nil {
		review.Review = *text
	}
	if err := s.storage.Update(ctx, review); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		log.Error("Error updating review: " + err.Error())
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, principal *models.Principal, id int64) error {
	const op = "reviews.ReviewService.Delete"
	log := s.log.With("op", op, "id", id, "user_id", principal.ID)
	review, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(principal, review) {
		log.Warn("delete of foreign review rejected", "owner_id", review.UserID)
		return ErrForbidden
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReviewNotFound
		}
		log.Error(err.Error())
		return err
	}
	log.Info("review deleted", "by_admin", principal.IsAdmin())
	return nil
}
