package service

import (
	"context"
	"testing"
	"time"

	"storepos/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestEnsureOwnerOnlyBootstrapsEmptyStore(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(userFake{db}, auditFake{db}, testSecret)
	ctx := context.Background()

	created, err := svc.EnsureOwner(ctx, "owner", "changeme")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureOwner(ctx, "owner2", "changeme")
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, db.users, 1)
	for _, u := range db.users {
		assert.Equal(t, model.RoleOwner, u.Role)
		assert.NotEqual(t, "changeme", u.PasswordHash)
	}
}

func TestAuthenticate(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(userFake{db}, auditFake{db}, testSecret)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, nil, CreateUserRequest{Username: "kiran", Password: "secret1", Role: "cashier"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, " kiran ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, got.Role)

	_, err = svc.Authenticate(ctx, "kiran", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	db.users[u.ID].Active = false
	_, err = svc.Authenticate(ctx, "kiran", "secret1")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginIssuesSignedToken(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(userFake{db}, auditFake{db}, testSecret)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, nil, CreateUserRequest{Username: "mira", Password: "secret1", Role: "manager"})
	require.NoError(t, err)

	tok, err := svc.Login(ctx, LoginUserRequest{Username: "mira", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, tok.Role)
	assert.Contains(t, tok.Capabilities, model.CapCatalogWrite)
	assert.NotContains(t, tok.Capabilities, model.CapUsersManage)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), tok.ExpiresAt, time.Minute)

	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) { return testSecret, nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, u.ID.String(), claims["sub"])
	assert.Equal(t, "manager", claims["role"])
}

func TestCreateUserValidation(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(userFake{db}, auditFake{db}, testSecret)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, nil, CreateUserRequest{Username: "x", Password: "secret1", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateUser(ctx, nil, CreateUserRequest{Username: "x", Password: "123", Role: "cashier"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateUser(ctx, nil, CreateUserRequest{Username: "  ", Password: "secret1", Role: "cashier"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, db.users)
}

func TestDisableUser(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(userFake{db}, auditFake{db}, testSecret)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, nil, CreateUserRequest{Username: "owner", Password: "secret1", Role: "owner"})
	require.NoError(t, err)
	cashier, err := svc.CreateUser(ctx, &owner.ID, CreateUserRequest{Username: "cash", Password: "secret1", Role: "cashier"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DisableUser(ctx, &owner.ID, owner.ID), ErrInvalidInput)
	require.NoError(t, svc.DisableUser(ctx, &owner.ID, cashier.ID))
	assert.False(t, db.users[cashier.ID].Active)

	missing := uuid.New()
	assert.Error(t, svc.DisableUser(ctx, &owner.ID, missing))
	assert.Equal(t, []string{model.ActionCreateUser, model.ActionCreateUser, model.ActionDisableUser}, db.actions())
}
