package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/services"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/posters"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memAccounts struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*models.Account
}

func (m *memAccounts) Insert(_ context.Context, username, email string, passwordHash []byte, role models.Role) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Role == role && (strings.EqualFold(a.Email, email) || a.Username == username) {
			return nil, storage.ErrConflict
		}
	}
	m.nextID++
	now := time.Now()
	account := &models.Account{
		ID: m.nextID, Username: username, Email: email, PasswordHash: passwordHash,
		Role: role, CreatedAt: now, UpdatedAt: now,
	}
	m.accounts[account.ID] = account
	copied := *account
	return &copied, nil
}

func (m *memAccounts) GetByLogin(_ context.Context, role models.Role, login string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Role == role && (strings.EqualFold(a.Email, login) || a.Username == login) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memAccounts) GetByRefreshToken(_ context.Context, digest string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.RefreshToken != nil && *a.RefreshToken == digest {
			copied := *a
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memAccounts) SetRefreshToken(_ context.Context, id int64, digest *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.RefreshToken = digest
	return nil
}

func (m *memAccounts) List(_ context.Context, role models.Role) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []models.Account{}
	for _, a := range m.accounts {
		if a.Role == role {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memAccounts) Get(_ context.Context, id int64, role models.Role) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.Role != role {
		return nil, storage.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memAccounts) Update(_ context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.accounts[account.ID]
	if !ok || current.Role != account.Role {
		return nil, storage.ErrNotFound
	}
	for _, a := range m.accounts {
		if a.ID != account.ID && a.Role == account.Role &&
			(strings.EqualFold(a.Email, account.Email) || a.Username == account.Username) {
			return nil, storage.ErrConflict
		}
	}
	updated := *account
	updated.UpdatedAt = time.Now()
	m.accounts[account.ID] = &updated
	copied := updated
	return &copied, nil
}

func (m *memAccounts) Delete(_ context.Context, id int64, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.Role != role {
		return storage.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *memAccounts) username(id int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		return a.Username
	}
	return ""
}

type memMovies struct {
	mu     sync.Mutex
	nextID int64
	movies map[int64]*models.Movie
}

func (m *memMovies) Get(_ context.Context, id int64) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie, ok := m.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *movie
	return &copied, nil
}

func (m *memMovies) Insert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.movies {
		if existing.Name == movie.Name {
			return nil, storage.ErrConflict
		}
	}
	m.nextID++
	stored := *movie
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.movies[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memMovies) List(_ context.Context, name, genre string, f filters.Filters) ([]models.Movie, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.Movie{}
	for _, movie := range m.movies {
		if strings.Contains(strings.ToLower(movie.Name), strings.ToLower(name)) &&
			strings.Contains(strings.ToLower(movie.Genre), strings.ToLower(genre)) {
			matched = append(matched, *movie)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	if f.SortDirection() == filters.DescSort {
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	}
	total := len(matched)
	start := min(f.Offset(), total)
	end := min(start+f.Limit(), total)
	return matched[start:end], total, nil
}

func (m *memMovies) Update(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movies[movie.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	for _, existing := range m.movies {
		if existing.ID != movie.ID && existing.Name == movie.Name {
			return nil, storage.ErrConflict
		}
	}
	stored := *movie
	stored.UpdatedAt = time.Now()
	m.movies[movie.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memMovies) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movies[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.movies, id)
	return nil
}

func (m *memMovies) name(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie, ok := m.movies[id]
	if !ok {
		return "", false
	}
	return movie.Name, true
}

// memReviews joins authors and movies the way the SQL model does.
type memReviews struct {
	mu       sync.Mutex
	nextID   int64
	reviews  map[int64]*models.Review
	accounts *memAccounts
	movies   *memMovies
}

func (m *memReviews) withRelations(r models.Review) models.Review {
	movieName, _ := m.movies.name(r.MovieID)
	r.User = &models.ReviewAuthor{ID: r.UserID, Username: m.accounts.username(r.UserID)}
	r.Movie = &models.ReviewMovie{ID: r.MovieID, Name: movieName}
	return r
}

func (m *memReviews) Insert(_ context.Context, review *models.Review) (int64, error) {
	if _, ok := m.movies.name(review.MovieID); !ok {
		return 0, storage.ErrForeignKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.UserID == review.UserID && existing.MovieID == review.MovieID {
			return 0, storage.ErrConflict
		}
	}
	m.nextID++
	stored := *review
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.reviews[stored.ID] = &stored
	return stored.ID, nil
}

func (m *memReviews) Get(_ context.Context, id int64) (*models.Review, error) {
	m.mu.Lock()
	review, ok := m.reviews[id]
	m.mu.Unlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	joined := m.withRelations(*review)
	return &joined, nil
}

func (m *memReviews) list(keep func(*models.Review) bool) []models.Review {
	m.mu.Lock()
	selected := []models.Review{}
	for _, r := range m.reviews {
		if keep(r) {
			selected = append(selected, *r)
		}
	}
	m.mu.Unlock()
	sort.Slice(selected, func(i, j int) bool { return selected[i].ID > selected[j].ID })
	for i := range selected {
		selected[i] = m.withRelations(selected[i])
	}
	return selected
}

func (m *memReviews) List(_ context.Context) ([]models.Review, error) {
	return m.list(func(*models.Review) bool { return true }), nil
}

func (m *memReviews) ListForMovie(_ context.Context, movieID int64) ([]models.Review, error) {
	return m.list(func(r *models.Review) bool { return r.MovieID == movieID }), nil
}

func (m *memReviews) Update(_ context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reviews[review.ID]
	if !ok {
		return storage.ErrNotFound
	}
	stored.Rating = review.Rating
	stored.Review = review.Review
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memReviews) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

type testEnv struct {
	app      *Application
	handler  http.Handler
	accounts *memAccounts
	movies   *memMovies
	reviews  *memReviews
	posters  *posters.Store
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Auth: config.Auth{
			AccessTokenSecret:  "access-secret",
			RefreshTokenSecret: "refresh-secret",
			AccessTokenTTL:     24 * time.Hour,
			RefreshTokenTTL:    24 * time.Hour,
			BcryptCost:         bcrypt.MinCost,
			CookieSecure:       true,
			AllowAdminSignup:   true,
		},
		Uploads: config.Uploads{Root: t.TempDir(), MaxPosterSize: 5 << 20},
		CORS:    config.CORS{TrustedOrigins: []string{"http://localhost:3000"}},
	}
}

func NewTestApplication(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	posterStore, err := posters.New(cfg.Uploads.Root, cfg.Uploads.MaxPosterSize)
	require.NoError(t, err)
	accounts := &memAccounts{accounts: make(map[int64]*models.Account)}
	movies := &memMovies{movies: make(map[int64]*models.Movie)}
	reviews := &memReviews{reviews: make(map[int64]*models.Review), accounts: accounts, movies: movies}
	svcs, err := services.New(log, cfg, services.Storage{
		Accounts: accounts,
		Movies:   movies,
		Reviews:  reviews,
		Posters:  posterStore,
	}, nil, nil)
	require.NoError(t, err)
	app := NewApplication(cfg, log, svcs, tasks.New(log, 1, 1))
	return &testEnv{
		app:      app,
		handler:  app.routes(),
		accounts: accounts,
		movies:   movies,
		reviews:  reviews,
		posters:  posterStore,
	}
}

// seedMovie stores a movie under a fixed id.
func (e *testEnv) seedMovie(id int64, name string) {
	e.movies.mu.Lock()
	defer e.movies.mu.Unlock()
	e.movies.movies[id] = &models.Movie{
		ID:          id,
		Name:        name,
		Director:    "Director",
		ReleaseDate: fields.NewDate(2010, time.July, 16),
		Genre:       "sci-fi",
		Duration:    148,
		Cast:        "Someone",
	}
	e.movies.nextID = max(e.movies.nextID, id)
}

type testRequest struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func (e *testEnv) do(t *testing.T, req testRequest) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

// registerAndLogin returns the access token and refresh cookie of a fresh account.
func (e *testEnv) registerAndLogin(t *testing.T, role models.Role, username, email, password string) (string, *http.Cookie, int64) {
	t.Helper()
	registerPath, loginPath := "/register", "/login"
	if role == models.RoleAdmin {
		registerPath, loginPath = "/registerAdmin", "/loginAdmin"
	}
	rec := e.do(t, testRequest{method: http.MethodPost, path: registerPath, body: map[string]string{
		"username": username, "email": email, "password": password,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decodeResponse(t, rec).Data["user"].(map[string]any)

	rec = e.do(t, testRequest{method: http.MethodPost, path: loginPath, body: map[string]string{
		"email": email, "password": password,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decodeResponse(t, rec).Data["accessToken"].(string)
	return token, refreshCookie(rec), int64(user["id"].(float64))
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}
