package auth

import (
	"context"
	"io"
	"log/slog"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
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

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[int64]*models.Account)}
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

type syncExecutor struct{}

func (syncExecutor) Add(task func()) { task() }

type sentMail struct {
	recipient string
	tmplName  string
	data      any
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(recipient string, tmplName string, tmplData any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{recipient, tmplName, tmplData})
	return nil
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("access-secret", "refresh-secret", 24*time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return issuer
}

func newTestService(t *testing.T, mailer MailProvider) (*AuthService, *memAccounts, *TokenIssuer) {
	t.Helper()
	hasher, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	accounts := newMemAccounts()
	issuer := newTestIssuer(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, accounts, hasher, issuer, mailer, syncExecutor{}), accounts, issuer
}
