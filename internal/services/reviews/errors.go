package reviews

import "errors"

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this movie")
	ErrForbidden       = errors.New("you can only modify your own reviews")
)
