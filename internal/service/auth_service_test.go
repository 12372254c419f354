package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]*models.User
	lastLogins []string
	touchErr   error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id string) error {
	m.lastLogins = append(m.lastLogins, id)
	return m.touchErr
}

func newAuthServiceMock(t *testing.T, repo *mockUserRepo) *AuthService {
	t.Helper()
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: 15 * time.Minute,
		Issuer:     "acadsync-test",
	})
}

func seedUser(t *testing.T, id, email, password string, role models.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &models.User{ID: id, Email: email, FullName: "Test User", PasswordHash: hash, Role: role, Active: active}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": seedUser(t, "u1", "admin@example.com", "secret123", models.RoleAdmin, true),
	}}
	svc := newAuthServiceMock(t, repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, []string{"u1"}, repo.lastLogins)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": seedUser(t, "u1", "admin@example.com", "secret123", models.RoleAdmin, true),
	}}
	svc := newAuthServiceMock(t, repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceMock(t, &mockUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": seedUser(t, "u1", "gone@example.com", "secret123", models.RoleFaculty, false),
	}}
	svc := newAuthServiceMock(t, repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "gone@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceRefresh(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": seedUser(t, "u1", "admin@example.com", "secret123", models.RoleAdmin, true),
	}}
	svc := newAuthServiceMock(t, repo)

	resp, err := svc.Refresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Refresh(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": seedUser(t, "u1", "admin@example.com", "secret123", models.RoleAdmin, true),
	}}
	issuer := newAuthServiceMock(t, repo)
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)

	verifier := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "other-secret", Expiration: time.Minute})
	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
