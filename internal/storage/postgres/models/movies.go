package models

import (
	"context"
	"fmt"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const movieColumns = `id, name, director, release_date, genre, duration, synopsis, "cast", poster, created_at, updated_at`

type MovieModel struct {
	DB *pgxpool.Pool
}

func (m *MovieModel) Get(ctx context.Context, id int64) (*models.Movie, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &movie, nil
}

func (m *MovieModel) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO movies (name, director, release_date, genre, duration, synopsis, "cast", poster)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+movieColumns,
		movie.Name,
		movie.Director,
		movie.ReleaseDate,
		movie.Genre,
		movie.Duration,
		movie.Synopsis,
		movie.Cast,
		movie.Poster,
	)
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &created, nil
}

func (m *MovieModel) List(ctx context.Context, name, genre string, filters filters.Filters) ([]models.Movie, int, error) {
	query := fmt.Sprintf(`
	SELECT count(*) OVER() AS total, %s FROM movies
	WHERE (name ILIKE '%%' || $1::text || '%%' OR $1::text = '')
	AND (genre ILIKE '%%' || $2::text || '%%' OR $2::text = '')
	ORDER BY %s %s, id ASC
	LIMIT $3 OFFSET $4
	`, movieColumns, filters.SortColumn(), filters.SortDirection())
	rows, _ := m.DB.Query(ctx, query, name, genre, filters.Limit(), filters.Offset())
	type row struct {
		Total int `db:"total"`
		models.Movie
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	movies := make([]models.Movie, 0, len(outputRows))
	for _, row := range outputRows {
		movies = append(movies, row.Movie)
	}
	if len(outputRows) == 0 {
		return movies, 0, nil
	}
	return movies, outputRows[0].Total, nil
}

func (m *MovieModel) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE movies SET name = $1, director = $2, release_date = $3, genre = $4, duration = $5,
		synopsis = $6, "cast" = $7, poster = $8, updated_at = now()
		WHERE id = $9 RETURNING `+movieColumns,
		movie.Name,
		movie.Director,
		movie.ReleaseDate,
		movie.Genre,
		movie.Duration,
		movie.Synopsis,
		movie.Cast,
		movie.Poster,
		movie.ID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &updated, nil
}

func (m *MovieModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM movies WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
