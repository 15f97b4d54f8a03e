package accounts

import (
	"context"
	"errors"
	"log/slog"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type AccountStorage interface {
	List(ctx context.Context, role models.Role) ([]models.Account, error)
	Get(ctx context.Context, id int64, role models.Role) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, id int64, role models.Role) error
}

type PasswordHasher interface {
	Hash(plaintext string) ([]byte, error)
}

// AccountService manages stored accounts of one role.
type AccountService struct {
	log     *slog.Logger
	storage AccountStorage
	hasher  PasswordHasher
	role    models.Role
}

func New(log *slog.Logger, storage AccountStorage, hasher PasswordHasher, role models.Role) *AccountService {
	return &AccountService{
		log:     log,
		storage: storage,
		hasher:  hasher,
		role:    role,
	}
}

func (s *AccountService) List(ctx context.Context) ([]models.SafeUser, error) {
	const op = "accounts.AccountService.List"
	log := s.log.With("op", op, "role", s.role)
	accounts, err := s.storage.List(ctx, s.role)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	users := make([]models.SafeUser, 0, len(accounts))
	for i := range accounts {
		users = append(users, accounts[i].Safe())
	}
	return users, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.SafeUser, error) {
	const op = "accounts.AccountService.Get"
	log := s.log.With("op", op, "id", id, "role", s.role)
	account, err := s.storage.Get(ctx, id, s.role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("account not found")
			return nil, ErrAccountNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	user := account.Safe()
	return &user, nil
}

type UpdateParams struct {
	Username *string
	Email    *string
	Password *string
}

func (s *AccountService) Update(ctx context.Context, id int64, params UpdateParams) (*models.SafeUser, error) {
	const op = "accounts.AccountService.Update"
	log := s.log.With("op", op, "id", id, "role", s.role)
	account, err := s.storage.Get(ctx, id, s.role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error("Error getting account: " + err.Error())
		return nil, err
	}
	if params.Username != nil {
		account.Username = *params.Username
	}
	if params.Email != nil {
		account.Email = *params.Email
	}
	if params.Password != nil {
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			log.Error("Error hashing password: " + err.Error())
			return nil, err
		}
		account.PasswordHash = hash
	}
	updated, err := s.storage.Update(ctx, account)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("account already exists")
			return nil, ErrAccountAlreadyExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrAccountNotFound
		}
		log.Error("Error updating account: " + err.Error())
		return nil, err
	}
	user := updated.Safe()
	return &user, nil
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	const op = "accounts.AccountService.Delete"
	log := s.log.With("op", op, "id", id, "role", s.role)
	if err := s.storage.Delete(ctx, id, s.role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("account not found")
			return ErrAccountNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
