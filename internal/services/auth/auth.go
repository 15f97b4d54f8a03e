package auth

import (
	"context"
	"errors"
	"log/slog"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type AccountStorage interface {
	Insert(ctx context.Context, username, email string, passwordHash []byte, role models.Role) (*models.Account, error)
	GetByLogin(ctx context.Context, role models.Role, login string) (*models.Account, error)
	GetByRefreshToken(ctx context.Context, tokenDigest string) (*models.Account, error)
	SetRefreshToken(ctx context.Context, id int64, tokenDigest *string) error
}

type PasswordHasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(plaintext string, digest []byte) bool
}

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func())
}

// Session is the result of a successful login. RefreshToken goes to the cookie only.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         models.SafeUser
}

type AuthService struct {
	log          *slog.Logger
	storage      AccountStorage
	hasher       PasswordHasher
	tokens       *TokenIssuer
	mailer       MailProvider
	taskExecutor TaskExecutor
	dummyDigest  []byte
}

// New builds the service. mailer may be nil, in which case no welcome emails are sent.
func New(
	log *slog.Logger,
	storage AccountStorage,
	hasher PasswordHasher,
	tokens *TokenIssuer,
	mailer MailProvider,
	taskExecutor TaskExecutor,
) *AuthService {
	// compared against when the login is unknown so both failure paths cost one bcrypt run
	dummyDigest, err := hasher.Hash("not-a-real-password")
	if err != nil {
		panic(err)
	}
	return &AuthService{
		log:          log,
		storage:      storage,
		hasher:       hasher,
		tokens:       tokens,
		mailer:       mailer,
		taskExecutor: taskExecutor,
		dummyDigest:  dummyDigest,
	}
}

func (a *AuthService) RefreshTTLSeconds() int {
	return int(a.tokens.RefreshTTL().Seconds())
}

func (a *AuthService) Register(ctx context.Context, role models.Role, username, email, password string) (*models.Account, error) {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "email", email, "role", role)
	hash, err := a.hasher.Hash(password)
	if err != nil {
		log.Error("Error hashing password", "errMsg", err.Error())
		return nil, err
	}
	account, err := a.storage.Insert(ctx, username, email, hash, role)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("account already exists")
			return nil, ErrAccountAlreadyExists
		}
		log.Error("Error inserting account", "errMsg", err.Error())
		return nil, err
	}
	if a.mailer != nil && a.taskExecutor != nil {
		a.taskExecutor.Add(func() {
			a.sendWelcomeEmail(account)
		})
	}
	return account, nil
}

func (a *AuthService) sendWelcomeEmail(account *models.Account) {
	a.log.Info("sending welcome email", "account_id", account.ID)
	err := a.mailer.Send(
		account.Email,
		"user_welcome.tmpl",
		map[string]any{
			"username": account.Username,
			"role":     string(account.Role),
		})
	if err != nil {
		a.log.Error("Error sending welcome email", "errMsg", err.Error())
	}
}

// Login never reveals whether the login exists: unknown accounts and wrong passwords
// both yield ErrInvalidCredentials.
func (a *AuthService) Login(ctx context.Context, role models.Role, login, password string) (*Session, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "login", login, "role", role)
	account, err := a.storage.GetByLogin(ctx, role, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.hasher.Verify(password, a.dummyDigest)
			log.Info("account not found")
			return nil, ErrInvalidCredentials
		}
		log.Error("Error getting account", "errMsg", err.Error())
		return nil, err
	}
	if !a.hasher.Verify(password, account.PasswordHash) {
		log.Info("wrong password")
		return nil, ErrInvalidCredentials
	}
	safeUser := account.Safe()
	accessToken, err := a.tokens.IssueAccessToken(safeUser)
	if err != nil {
		log.Error("Error issuing access token", "errMsg", err.Error())
		return nil, err
	}
	refreshToken, err := a.tokens.IssueRefreshToken(safeUser)
	if err != nil {
		log.Error("Error issuing refresh token", "errMsg", err.Error())
		return nil, err
	}
	digest := digestToken(refreshToken)
	if err := a.storage.SetRefreshToken(ctx, account.ID, &digest); err != nil {
		log.Error("Error persisting refresh token", "errMsg", err.Error())
		return nil, err
	}
	return &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: safeUser}, nil
}

// Refresh exchanges a refresh token that is still the persisted one for a new access token.
// The refresh token itself is not rotated.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.AuthService.Refresh"
	log := a.log.With("op", op)
	account, err := a.storage.GetByRefreshToken(ctx, digestToken(refreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("refresh token not recognized")
			return "", ErrRefreshTokenRevoked
		}
		log.Error("Error getting account by refresh token", "errMsg", err.Error())
		return "", err
	}
	claims, err := a.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		log.Info("invalid refresh token", "account_id", account.ID, "reason", err.Error())
		return "", ErrInvalidToken
	}
	if claims.UserID != account.ID {
		log.Warn("refresh token subject mismatch", "account_id", account.ID, "claims_id", claims.UserID)
		return "", ErrInvalidToken
	}
	accessToken, err := a.tokens.IssueAccessToken(models.SafeUser{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	})
	if err != nil {
		log.Error("Error issuing access token", "errMsg", err.Error())
		return "", err
	}
	return accessToken, nil
}

// Logout clears the refresh token slot of the account of the given role holding refreshToken.
func (a *AuthService) Logout(ctx context.Context, role models.Role, refreshToken string) error {
	const op = "auth.AuthService.Logout"
	log := a.log.With("op", op, "role", role)
	account, err := a.storage.GetByRefreshToken(ctx, digestToken(refreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrSessionNotFound
		}
		log.Error("Error getting account by refresh token", "errMsg", err.Error())
		return err
	}
	if account.Role != role {
		return ErrSessionNotFound
	}
	if err := a.storage.SetRefreshToken(ctx, account.ID, nil); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrSessionNotFound
		}
		log.Error("Error clearing refresh token", "errMsg", err.Error())
		return err
	}
	log.Info("logged out", "account_id", account.ID)
	return nil
}

func (a *AuthService) Authenticate(accessToken string) (*models.Principal, error) {
	claims, err := a.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims.Principal(), nil
}
