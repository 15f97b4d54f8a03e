package services

import (
	"fmt"
	"log/slog"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/services/accounts"
	"moviecatalog/proj/internal/services/auth"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/services/reviews"
)

type AccountStorage interface {
	auth.AccountStorage
	accounts.AccountStorage
}

// Storage groups the persistence dependencies of all services.
type Storage struct {
	Accounts AccountStorage
	Movies   movies.MoviesStorage
	Reviews  reviews.ReviewStorage
	Posters  movies.PosterStore
}

type Services struct {
	Auth   *auth.AuthService
	Admins *accounts.AccountService
	Movies *movies.MovieService
	Review *reviews.ReviewService
}

// New wires the services. mailer may be nil to disable outgoing mail.
func New(
	log *slog.Logger,
	cfg *config.Config,
	storage Storage,
	mailer auth.MailProvider,
	taskExecutor auth.TaskExecutor,
) (*Services, error) {
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	tokens, err := auth.NewTokenIssuer(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	return &Services{
		Auth:   auth.New(log, storage.Accounts, hasher, tokens, mailer, taskExecutor),
		Admins: accounts.New(log, storage.Accounts, hasher, models.RoleAdmin),
		Movies: movies.New(log, storage.Movies, storage.Posters),
		Review: reviews.New(log, storage.Reviews),
	}, nil
}
