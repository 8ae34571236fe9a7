package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *InMemoryAccountRepository) {
	t.Helper()
	repo := NewInMemoryAccountRepository()
	svc := NewService(repo, WithHasherRegistry(NewHasherRegistry(&BcryptHasher{Cost: bcrypt.MinCost}, NewArgon2Hasher())))
	return svc, repo
}

func TestResolveAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	alice, err := svc.CreateAccount(ctx, CreateAccountParams{Login: "alice", Email: "Alice@Example.com", Password: "correctpw"})
	require.NoError(t, err)
	// a login name that is itself an email address
	odd, err := svc.CreateAccount(ctx, CreateAccountParams{Login: "carol@example.org", Email: "carol.other@example.org", Password: "pw"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		identifier string
		wantFound  bool
		wantID     string
	}{
		{"by login", "alice", true, alice.ID.String()},
		{"by email case-insensitive", "alice@example.com", true, alice.ID.String()},
		{"surrounding whitespace", "  alice\t", true, alice.ID.String()},
		{"email falls back to login", "carol@example.org", true, odd.ID.String()},
		{"unknown email", "newuser@example.com", false, ""},
		{"unknown login", "mallory", false, ""},
		{"empty", "", false, ""},
		{"only whitespace", "   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, found, err := svc.ResolveAccount(ctx, tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantID, acct.ID.String())
			}
		})
	}
}

type failingRepo struct {
	*InMemoryAccountRepository
}

func (f *failingRepo) FindByLogin(ctx context.Context, login string) (Account, error) {
	return Account{}, errors.New("connection reset")
}

func TestResolveAccountRepositoryError(t *testing.T) {
	svc := NewService(&failingRepo{NewInMemoryAccountRepository()})

	_, found, err := svc.ResolveAccount(context.Background(), "alice")
	assert.False(t, found)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestVerifyPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Login: "alice", Email: "alice@example.com", Password: "correctpw"})
	require.NoError(t, err)

	ok, err := svc.VerifyPassword(ctx, acct, "correctpw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, acct, "wrongpw")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyPassword(ctx, acct, "")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("argon2 hash", func(t *testing.T) {
		hash, err := NewArgon2Hasher().Hash("s3cret")
		require.NoError(t, err)
		ok, err := svc.VerifyPassword(ctx, Account{PasswordHash: hash}, "s3cret")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown hash format", func(t *testing.T) {
		_, err := svc.VerifyPassword(ctx, Account{PasswordHash: "plaintext"}, "plaintext")
		assert.Error(t, err)
	})
}

func TestCreateAccountDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(ctx, CreateAccountParams{Login: "alice", Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, CreateAccountParams{Login: "alice", Email: "other@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrAccountAlreadyExists)

	_, err = svc.CreateAccount(ctx, CreateAccountParams{Login: "alice2", Email: "ALICE@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrAccountAlreadyExists)
}

func TestLooksLikeEmail(t *testing.T) {
	assert.True(t, LooksLikeEmail("bob@example.com"))
	assert.True(t, LooksLikeEmail("first.last+tag@sub.example.co.uk"))
	assert.False(t, LooksLikeEmail("alice"))
	assert.False(t, LooksLikeEmail("alice@"))
	assert.False(t, LooksLikeEmail("@example.com"))
	assert.False(t, LooksLikeEmail("alice@localhost"))
	assert.False(t, LooksLikeEmail("Bob <bob@example.com>"))
}

func TestEqualizeTiming(t *testing.T) {
	svc, _ := newTestService(t)
	svc.EqualizeTiming("anything")
	assert.NotEmpty(t, svc.dummyHash)
	svc.EqualizeTiming("")
}
