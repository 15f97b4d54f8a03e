package models

import (
	"context"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewSelect = `
	SELECT r.id, r.rating::float8 AS rating, r.review, r.user_id, r.movie_id, r.created_at, r.updated_at,
	a.username AS author_username, m.name AS movie_name
	FROM reviews r
	JOIN accounts a ON a.id = r.user_id
	JOIN movies m ON m.id = r.movie_id`

type ReviewModel struct {
	DB *pgxpool.Pool
}

type reviewRow struct {
	ID             int64     `db:"id"`
	Rating         float64   `db:"rating"`
	Review         string    `db:"review"`
	UserID         int64     `db:"user_id"`
	MovieID        int64     `db:"movie_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	AuthorUsername string    `db:"author_username"`
	MovieName      string    `db:"movie_name"`
}

func (r reviewRow) toModel() models.Review {
	return models.Review{
		ID:        r.ID,
		Rating:    r.Rating,
		Review:    r.Review,
		UserID:    r.UserID,
		MovieID:   r.MovieID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		User:      &models.ReviewAuthor{ID: r.UserID, Username: r.AuthorUsername},
		Movie:     &models.ReviewMovie{ID: r.MovieID, Name: r.MovieName},
	}
}

func (m *ReviewModel) collect(rows pgx.Rows) ([]models.Review, error) {
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	reviews := make([]models.Review, 0, len(outputRows))
	for _, row := range outputRows {
		reviews = append(reviews, row.toModel())
	}
	return reviews, nil
}

// Insert relies on the (user_id, movie_id) unique constraint to reject a second review.
func (m *ReviewModel) Insert(ctx context.Context, review *models.Review) (int64, error) {
	var id int64
	err := m.DB.QueryRow(
		ctx,
		"INSERT INTO reviews (rating, review, user_id, movie_id) VALUES ($1, $2, $3, $4) RETURNING id",
		review.Rating,
		review.Review,
		review.UserID,
		review.MovieID,
	).Scan(&id)
	if err != nil {
		return 0, postgres.MapError(err)
	}
	return id, nil
}

func (m *ReviewModel) Get(ctx context.Context, id int64) (*models.Review, error) {
	rows, _ := m.DB.Query(ctx, reviewSelect+" WHERE r.id = $1", id)
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	review := row.toModel()
	return &review, nil
}

func (m *ReviewModel) List(ctx context.Context) ([]models.Review, error) {
	rows, _ := m.DB.Query(ctx, reviewSelect+" ORDER BY r.created_at DESC, r.id DESC")
	return m.collect(rows)
}

func (m *ReviewModel) ListForMovie(ctx context.Context, movieID int64) ([]models.Review, error) {
	rows, _ := m.DB.Query(ctx, reviewSelect+" WHERE r.movie_id = $1 ORDER BY r.created_at DESC, r.id DESC", movieID)
	return m.collect(rows)
}

func (m *ReviewModel) Update(ctx context.Context, review *models.Review) error {
	status, err := m.DB.Exec(
		ctx,
		"UPDATE reviews SET rating = $1, review = $2, updated_at = now() WHERE id = $3",
		review.Rating,
		review.Review,
		review.ID,
	)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *ReviewModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
