package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/restclient"
)

type stubAuthenticator struct {
	result *models.AuthResult
	err    error
	calls  int
}

func (a *stubAuthenticator) Authenticate(context.Context, string, string) (*models.AuthResult, error) {
	a.calls++
	return a.result, a.err
}

type failingKV struct {
	*repository.MemoryKV
}

func (failingKV) Delete(context.Context, ...string) error {
	return errors.New("store unavailable")
}

func newSessionFixture(auth Authenticator) (*SessionFactory, *repository.MemoryKV, *JWTSigner, *time.Time) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	signer := NewJWTSigner("test-secret", 24*time.Hour, "lsa")
	signer.now = func() time.Time { return now }
	store := repository.NewMemoryKV(0)
	return NewSessionFactory(auth, store, signer, nil, nil), store, signer, &now
}

func TestSignInPersistsSession(t *testing.T) {
	auth := &stubAuthenticator{result: &models.AuthResult{Success: true, UserID: "7", Email: "admin@lsa.ma", FullName: "Admin"}}
	factory, store, signer, _ := newSessionFixture(auth)
	session := factory.For("sid-1")

	user, err := session.SignIn(context.Background(), "admin@lsa.ma", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, session.IsAuthenticated())

	raw, ok, err := store.Get(context.Background(), "lsa:sid-1:lsa_auth_session")
	require.NoError(t, err)
	require.True(t, ok)
	var persisted models.SessionUser
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, "7", persisted.ID)

	token, ok, _ := store.Get(context.Background(), "lsa:sid-1:lsa_auth_token")
	require.True(t, ok)
	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestSignInValidatesLocally(t *testing.T) {
	auth := &stubAuthenticator{}
	factory, _, _, _ := newSessionFixture(auth)

	_, err := factory.For("s").SignIn(context.Background(), "nope", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, auth.calls)
}

func TestSignInRejected(t *testing.T) {
	auth := &stubAuthenticator{err: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}
	factory, store, _, _ := newSessionFixture(auth)
	session := factory.For("s")

	_, err := session.SignIn(context.Background(), "a@b.ma", "bad")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	assert.False(t, session.IsAuthenticated())
	_, ok, _ := store.Get(context.Background(), "lsa:s:lsa_auth_session")
	assert.False(t, ok)
}

func TestSignInRefusesResultWithoutUserID(t *testing.T) {
	auth := &stubAuthenticator{result: &models.AuthResult{Success: true, Email: "a@b.ma", Role: models.RoleAdmin}}
	factory, store, _, _ := newSessionFixture(auth)
	session := factory.For("s")

	_, err := session.SignIn(context.Background(), "a@b.ma", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackend))
	assert.False(t, session.IsAuthenticated())
	_, ok, _ := store.Get(context.Background(), "lsa:s:lsa_auth_session")
	assert.False(t, ok)
	_, ok, _ = store.Get(context.Background(), "lsa:s:lsa_auth_token")
	assert.False(t, ok)
}

func TestRestoreFromStore(t *testing.T) {
	auth := &stubAuthenticator{result: &models.AuthResult{Success: true, UserID: "1", Email: "a@b.ma", Role: models.RoleAdmin}}
	factory, _, _, _ := newSessionFixture(auth)
	_, err := factory.For("s").SignIn(context.Background(), "a@b.ma", "pw")
	require.NoError(t, err)

	restored := factory.For("s")
	assert.False(t, restored.IsAuthenticated())
	restored.Restore(context.Background())
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, models.RoleAdmin, restored.User().Role)

	other := factory.For("other")
	other.Restore(context.Background())
	assert.False(t, other.IsAuthenticated())
}

func TestRestoreDiscardsCorruptedSession(t *testing.T) {
	factory, store, _, _ := newSessionFixture(&stubAuthenticator{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "lsa:s:lsa_auth_session", "{not json"))
	require.NoError(t, store.Set(ctx, "lsa:s:lsa_auth_token", "tok"))

	session := factory.For("s")
	session.Restore(ctx)

	assert.False(t, session.IsAuthenticated())
	assert.Nil(t, session.User())
	_, ok, _ := store.Get(ctx, "lsa:s:lsa_auth_session")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "lsa:s:lsa_auth_token")
	assert.False(t, ok)
}

func TestExpiredTokenSignsOut(t *testing.T) {
	auth := &stubAuthenticator{result: &models.AuthResult{Success: true, UserID: "1", Email: "a@b.ma"}}
	factory, store, _, now := newSessionFixture(auth)
	session := factory.For("s")
	_, err := session.SignIn(context.Background(), "a@b.ma", "pw")
	require.NoError(t, err)

	*now = now.Add(25 * time.Hour)
	assert.False(t, session.IsAuthenticated())
	assert.Nil(t, session.User())
	_, ok, _ := store.Get(context.Background(), "lsa:s:lsa_auth_token")
	assert.False(t, ok)
}

func TestRefreshTokenExtendsExpiry(t *testing.T) {
	auth := &stubAuthenticator{result: &models.AuthResult{Success: true, UserID: "1", Email: "a@b.ma"}}
	factory, _, signer, now := newSessionFixture(auth)
	session := factory.For("s")

	ok, err := session.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = session.SignIn(context.Background(), "a@b.ma", "pw")
	require.NoError(t, err)
	before, err := signer.Verify(session.Token())
	require.NoError(t, err)

	*now = now.Add(23 * time.Hour)
	ok, err = session.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	after, err := signer.Verify(session.Token())
	require.NoError(t, err)
	assert.True(t, after.ExpiresAt.After(before.ExpiresAt.Time))

	*now = now.Add(2 * time.Hour)
	assert.True(t, session.IsAuthenticated())
}

func TestSignOutIgnoresStoreErrors(t *testing.T) {
	auth := &stubAuthenticator{result: &models.AuthResult{Success: true, UserID: "1", Email: "a@b.ma"}}
	signer := NewJWTSigner("k", time.Hour, "")
	factory := NewSessionFactory(auth, failingKV{repository.NewMemoryKV(0)}, signer, nil, nil)
	session := factory.For("s")
	_, err := session.SignIn(context.Background(), "a@b.ma", "pw")
	require.NoError(t, err)

	session.SignOut(context.Background())
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Token())
}

func TestRPCAuthenticator(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		if gotBody["p_password"] == "right" {
			_, _ = w.Write([]byte(`[{"success":true,"user_id":12,"email":"a@b.ma","role":"admin","full_name":"A"}]`))
			return
		}
		if gotBody["p_password"] == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"function error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	auth := NewRPCAuthenticator(restclient.New(restclient.Config{BaseURL: srv.URL, APIKey: "anon", Timeout: time.Second}))

	result, err := auth.Authenticate(context.Background(), "a@b.ma", "right")
	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/rpc/authenticate_user", gotPath)
	assert.Equal(t, "a@b.ma", gotBody["p_email"])
	assert.Equal(t, models.ID("12"), result.UserID)

	_, err = auth.Authenticate(context.Background(), "a@b.ma", "wrong")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, err = auth.Authenticate(context.Background(), "a@b.ma", "broken")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestRPCAuthenticatorOverMemoryBackend(t *testing.T) {
	backend := repository.NewMemoryBackend()
	backend.Seed(repository.UsersTable, map[string]interface{}{
		"id": 3, "email": "admin@lsa.ma", "password": "secret", "role": models.RoleAdmin, "full_name": "Admin",
	})
	auth := NewRPCAuthenticator(backend)

	result, err := auth.Authenticate(context.Background(), "Admin@lsa.ma", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.ID("3"), result.UserID)
	assert.Equal(t, models.RoleAdmin, result.Role)

	_, err = auth.Authenticate(context.Background(), "admin@lsa.ma", "nope")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}
