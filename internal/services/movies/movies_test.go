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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMovies struct {
	nextID    int64
	movies    map[int64]*models.Movie
	updateErr error
	insertErr error
}

func newMemMovies() *memMovies {
	return &memMovies{movies: make(map[int64]*models.Movie)}
}

func (m *memMovies) Get(_ context.Context, id int64) (*models.Movie, error) {
	movie, ok := m.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *movie
	return &copied, nil
}

func (m *memMovies) Insert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	for _, existing := range m.movies {
		if existing.Name == movie.Name {
			return nil, storage.ErrConflict
		}
	}
	m.nextID++
	copied := *movie
	copied.ID = m.nextID
	m.movies[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memMovies) List(_ context.Context, name, genre string, f filters.Filters) ([]models.Movie, int, error) {
	var out []models.Movie
	for id := int64(1); id <= m.nextID; id++ {
		movie, ok := m.movies[id]
		if !ok {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(movie.Name), strings.ToLower(name)) {
			continue
		}
		if genre != "" && !strings.Contains(strings.ToLower(movie.Genre), strings.ToLower(genre)) {
			continue
		}
		out = append(out, *movie)
	}
	return out, len(out), nil
}

func (m *memMovies) Update(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.movies[movie.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	copied := *movie
	m.movies[movie.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memMovies) Delete(_ context.Context, id int64) error {
	if _, ok := m.movies[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.movies, id)
	return nil
}

type memPosters struct {
	saved     int
	files     map[string]bool
	saveErr   error
	removeErr error
}

func newMemPosters() *memPosters {
	return &memPosters{files: make(map[string]bool)}
}

func (p *memPosters) Save(r io.Reader) (string, error) {
	if p.saveErr != nil {
		return "", p.saveErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	p.saved++
	ref := "/uploads/posters/poster-" + string(rune('a'+p.saved)) + ".png"
	p.files[ref] = true
	return ref, nil
}

func (p *memPosters) Remove(ref string) error {
	if p.removeErr != nil {
		return p.removeErr
	}
	delete(p.files, ref)
	return nil
}

func newService() (*MovieService, *memMovies, *memPosters) {
	store, posters := newMemMovies(), newMemPosters()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store, posters), store, posters
}

func inception() CreateParams {
	return CreateParams{
		Name:        "Inception",
		Director:    "Christopher Nolan",
		ReleaseDate: fields.NewDate(2010, time.July, 16),
		Genre:       "Sci-Fi",
		Duration:    148,
		Cast:        "Leonardo DiCaprio",
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	t.Run("with poster", func(t *testing.T) {
		svc, _, posters := newService()
		movie, err := svc.Create(ctx, inception(), strings.NewReader("img"))
		require.NoError(t, err)
		require.NotNil(t, movie.Poster)
		assert.True(t, posters.files[*movie.Poster])
	})
	t.Run("without poster", func(t *testing.T) {
		svc, _, _ := newService()
		movie, err := svc.Create(ctx, inception(), nil)
		require.NoError(t, err)
		assert.Nil(t, movie.Poster)
	})
	t.Run("duplicate removes uploaded poster", func(t *testing.T) {
		svc, _, posters := newService()
		_, err := svc.Create(ctx, inception(), nil)
		require.NoError(t, err)
		_, err = svc.Create(ctx, inception(), strings.NewReader("img"))
		assert.ErrorIs(t, err, ErrMovieAlreadyExists)
		assert.Empty(t, posters.files)
	})
	t.Run("storage failure removes uploaded poster", func(t *testing.T) {
		svc, store, posters := newService()
		store.insertErr = errors.New("db down")
		_, err := svc.Create(ctx, inception(), strings.NewReader("img"))
		assert.Error(t, err)
		assert.Empty(t, posters.files)
	})
	t.Run("cleanup failure does not mask result", func(t *testing.T) {
		svc, _, posters := newService()
		_, err := svc.Create(ctx, inception(), nil)
		require.NoError(t, err)
		posters.removeErr = errors.New("permission denied")
		_, err = svc.Create(ctx, inception(), strings.NewReader("img"))
		assert.ErrorIs(t, err, ErrMovieAlreadyExists)
	})
	t.Run("rejected poster", func(t *testing.T) {
		svc, store, posters := newService()
		posters.saveErr = errors.New("invalid file type")
		_, err := svc.Create(ctx, inception(), strings.NewReader("txt"))
		assert.Error(t, err)
		assert.Empty(t, store.movies)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	t.Run("partial update keeps fields", func(t *testing.T) {
		svc, _, _ := newService()
		movie, err := svc.Create(ctx, inception(), nil)
		require.NoError(t, err)
		duration := int32(150)
		updated, err := svc.Update(ctx, movie.ID, UpdateParams{Duration: &duration}, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(150), updated.Duration)
		assert.Equal(t, "Inception", updated.Name)
		assert.Equal(t, "Christopher Nolan", updated.Director)
	})
	t.Run("new poster replaces old after update", func(t *testing.T) {
		svc, _, posters := newService()
		movie, err := svc.Create(ctx, inception(), strings.NewReader("old"))
		require.NoError(t, err)
		oldRef := *movie.Poster
		updated, err := svc.Update(ctx, movie.ID, UpdateParams{}, strings.NewReader("new"))
		require.NoError(t, err)
		assert.NotEqual(t, oldRef, *updated.Poster)
		assert.False(t, posters.files[oldRef])
		assert.True(t, posters.files[*updated.Poster])
	})
	t.Run("failed update keeps old poster", func(t *testing.T) {
		svc, store, posters := newService()
		movie, err := svc.Create(ctx, inception(), strings.NewReader("old"))
		require.NoError(t, err)
		oldRef := *movie.Poster
		store.updateErr = errors.New("db down")
		_, err = svc.Update(ctx, movie.ID, UpdateParams{}, strings.NewReader("new"))
		assert.Error(t, err)
		assert.Equal(t, map[string]bool{oldRef: true}, posters.files)
	})
	t.Run("not found", func(t *testing.T) {
		svc, _, posters := newService()
		_, err := svc.Update(ctx, 99, UpdateParams{}, strings.NewReader("new"))
		assert.ErrorIs(t, err, ErrMovieNotFound)
		assert.Empty(t, posters.files)
	})
	t.Run("rename conflict", func(t *testing.T) {
		svc, store, _ := newService()
		movie, err := svc.Create(ctx, inception(), nil)
		require.NoError(t, err)
		store.updateErr = storage.ErrConflict
		name := "Interstellar"
		_, err = svc.Update(ctx, movie.ID, UpdateParams{Name: &name}, nil)
		assert.ErrorIs(t, err, ErrMovieAlreadyExists)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, posters := newService()
	movie, err := svc.Create(ctx, inception(), strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, movie.ID))
	assert.Empty(t, store.movies)
	assert.Empty(t, posters.files)
	assert.ErrorIs(t, svc.Delete(ctx, movie.ID), ErrMovieNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()
	_, err := svc.Create(ctx, inception(), nil)
	require.NoError(t, err)
	other := inception()
	other.Name, other.Genre = "Up", "Animation"
	_, err = svc.Create(ctx, other, nil)
	require.NoError(t, err)

	f := filters.Filters{Page: 1, PageSize: 20, Sort: "id", SortSafelist: models.MovieSortSafelist}
	movies, meta, err := svc.List(ctx, "", "anim", f)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Up", movies[0].Name)
	assert.Equal(t, 1, meta.TotalRecords)
	assert.Equal(t, 1, meta.LastPage)
}
