package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/models"
)

func register(email, username string) models.RegisterRequest {
	return models.RegisterRequest{Email: email, Username: username, Password: "password123"}
}

func TestRegisterAndSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svcs.Auth.Register(ctx, register("Alice@Example.com", "alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, "alice", res.User.DisplayName)

	signedIn, err := f.svcs.Auth.SignIn(ctx, models.SignInRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, signedIn.User.ID)

	_, err = f.svcs.Auth.SignIn(ctx, models.SignInRequest{Email: "alice@example.com", Password: "wrong"})
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.svcs.Auth.SignIn(ctx, models.SignInRequest{Email: "nobody@example.com", Password: "password123"})
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svcs.Auth.Register(ctx, register("alice@example.com", "alice"))
	require.NoError(t, err)

	_, err = f.svcs.Auth.Register(ctx, register("ALICE@example.com", "alice2"))
	requireCode(t, err, apperrors.CodeBadRequest)

	_, err = f.svcs.Auth.Register(ctx, register("other@example.com", "alice"))
	requireCode(t, err, apperrors.CodeBadRequest)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

type stubVerifier struct {
	identity models.FirebaseIdentity
	err      error
}

func (s stubVerifier) VerifyIDToken(context.Context, string) (models.FirebaseIdentity, error) {
	return s.identity, s.err
}

func TestFirebaseLoginLinksExistingAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	local, err := f.svcs.Auth.Register(ctx, register("alice@example.com", "alice"))
	require.NoError(t, err)

	svc := NewAuthService(f.svcs.Auth.repos, f.svcs.Auth.tokens, stubVerifier{
		identity: models.FirebaseIdentity{UID: "fb-1", Email: "Alice@example.com"},
	})

	first, err := svc.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, local.User.ID, first.User.ID)
	require.NotNil(t, first.User.FirebaseUID)
	assert.Equal(t, "fb-1", *first.User.FirebaseUID)

	second, err := svc.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, local.User.ID, second.User.ID)
}

func TestFirebaseLoginCreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := NewAuthService(f.svcs.Auth.repos, f.svcs.Auth.tokens, stubVerifier{
		identity: models.FirebaseIdentity{UID: "fb-2", Email: "new.person@example.com", DisplayName: "New Person"},
	})
	res, err := svc.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "New Person", res.User.DisplayName)
	assert.NotEmpty(t, res.User.Username)
}

func TestFirebaseLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svcs.Auth.FirebaseLogin(ctx, "token")
	requireCode(t, err, apperrors.CodeBadRequest)

	svc := NewAuthService(f.svcs.Auth.repos, f.svcs.Auth.tokens, stubVerifier{err: errors.New("expired")})
	_, err = svc.FirebaseLogin(ctx, "token")
	requireCode(t, err, apperrors.CodeUnauthorized)
}
