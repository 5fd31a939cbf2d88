package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/restclient"
)

// Persisted key names, prefixed per session id.
const (
	SessionKey = "lsa_auth_session"
	TokenKey   = "lsa_auth_token"
)

const authenticateFn = "authenticate_user"

type rpcCaller interface {
	RPC(ctx context.Context, fn string, args interface{}) (*restclient.Response, error)
}

// Authenticator verifies dashboard credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.AuthResult, error)
}

// RPCAuthenticator checks credentials with the backend authenticate_user function.
type RPCAuthenticator struct {
	client rpcCaller
}

// NewRPCAuthenticator constructs an authenticator.
func NewRPCAuthenticator(client rpcCaller) *RPCAuthenticator {
	return &RPCAuthenticator{client: client}
}

// Authenticate returns the matched user. Rejections and non-2xx replies are
// reported as invalid credentials; transport failures are returned as is.
func (a *RPCAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.AuthResult, error) {
	resp, err := a.client.RPC(ctx, authenticateFn, map[string]string{"p_email": email, "p_password": password})
	if err != nil {
		if errors.Is(err, appErrors.ErrBackend) {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidCredentials.Code, appErrors.ErrInvalidCredentials.Status, appErrors.ErrInvalidCredentials.Message)
		}
		return nil, err
	}

	var rows []models.AuthResult
	var result models.AuthResult
	if err := resp.Decode(&rows); err == nil {
		if len(rows) == 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		result = rows[0]
	} else if err := resp.Decode(&result); err != nil {
		return nil, err
	}

	if !result.Success {
		message := result.Message
		if message == "" {
			message = appErrors.ErrInvalidCredentials.Message
		}
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, message)
	}
	return &result, nil
}

// TokenSigner issues and verifies session tokens.
type TokenSigner interface {
	Sign(user models.SessionUser) (string, time.Time, error)
	Verify(token string) (*models.SessionClaims, error)
}

// JWTSigner issues HS256 tokens carrying sub, email, role, iat and exp.
type JWTSigner struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTSigner constructs a signer. A non-positive ttl means 24 hours.
func NewJWTSigner(secret string, ttl time.Duration, issuer string) *JWTSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTSigner{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// Sign issues a token for user expiring ttl from now.
func (s *JWTSigner) Sign(user models.SessionUser) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := &models.SessionClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses token and checks its signature and expiry.
func (s *JWTSigner) Verify(token string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token claims")
	}
	return claims, nil
}

type sessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionFactory hands out one SessionManager per browser session id.
type SessionFactory struct {
	auth      Authenticator
	store     sessionStore
	signer    TokenSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionFactory constructs a factory.
func NewSessionFactory(auth Authenticator, store sessionStore, signer TokenSigner, validate *validator.Validate, logger *zap.Logger) *SessionFactory {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionFactory{auth: auth, store: store, signer: signer, validator: validate, logger: logger}
}

// For returns a signed-out manager bound to sid. Call Restore to load
// persisted state.
func (f *SessionFactory) For(sid string) *SessionManager {
	return &SessionManager{
		sid:        sid,
		sessionKey: "lsa:" + sid + ":" + SessionKey,
		tokenKey:   "lsa:" + sid + ":" + TokenKey,
		factory:    f,
		logger:     f.logger.With(zap.String("session", shortID(sid))),
	}
}

// SessionManager tracks the signed-in dashboard user of one browser session.
type SessionManager struct {
	mu         sync.Mutex
	sid        string
	sessionKey string
	tokenKey   string
	factory    *SessionFactory
	logger     *zap.Logger

	user  *models.SessionUser
	token string
}

// ID returns the browser session id.
func (m *SessionManager) ID() string {
	return m.sid
}

// SignIn checks credentials, issues a token and persists the session. A
// result without a user id is refused, since Restore could not reload it.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*models.SessionUser, error) {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := m.factory.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	result, err := m.factory.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		m.logger.Info("sign in rejected", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}
	if result.UserID == "" {
		m.logger.Warn("sign in result without user id", zap.String("email", req.Email))
		return nil, appErrors.Clone(appErrors.ErrBackend, "authentication response has no user id")
	}

	user := models.SessionUser{
		ID:       result.UserID.String(),
		Email:    result.Email,
		Role:     result.Role,
		FullName: result.FullName,
	}
	if user.Email == "" {
		user.Email = req.Email
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	token, _, err := m.factory.signer.Sign(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.factory.store.Set(ctx, m.sessionKey, string(encoded)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	if err := m.factory.store.Set(ctx, m.tokenKey, token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	m.user = &user
	m.token = token
	m.logger.Info("signed in", zap.String("user_id", user.ID), zap.String("role", user.Role))
	copied := user
	return &copied, nil
}

// SignOut clears the session in memory and in the store. Store failures are
// logged only.
func (m *SessionManager) SignOut(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(ctx)
	m.logger.Info("signed out")
}

// Restore loads persisted state. Missing state leaves the manager signed out;
// corrupted state is removed. It never fails.
func (m *SessionManager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user, m.token = nil, ""
	rawUser, okUser, err := m.factory.store.Get(ctx, m.sessionKey)
	if err != nil {
		m.logger.Warn("failed to read session", zap.Error(err))
		return
	}
	token, okToken, err := m.factory.store.Get(ctx, m.tokenKey)
	if err != nil {
		m.logger.Warn("failed to read session token", zap.Error(err))
		return
	}
	if !okUser || !okToken {
		return
	}

	var user models.SessionUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == "" {
		m.logger.Warn("discarding corrupted session", zap.Error(err))
		m.clearLocked(ctx)
		return
	}
	m.user = &user
	m.token = token
}

// RefreshToken re-issues the token with a fresh expiry. It reports false when
// nobody is signed in.
func (m *SessionManager) RefreshToken(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return false, nil
	}
	token, expiresAt, err := m.factory.signer.Sign(*m.user)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}
	if err := m.factory.store.Set(ctx, m.tokenKey, token); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session token")
	}
	m.token = token
	m.logger.Debug("session token refreshed", zap.Time("expires_at", expiresAt))
	return true, nil
}

// IsAuthenticated reports whether a user holds an unexpired token. An expired
// or invalid token signs the session out.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil || m.token == "" {
		return false
	}
	if _, err := m.factory.signer.Verify(m.token); err != nil {
		m.logger.Info("session expired", zap.Error(err))
		m.clearLocked(context.Background())
		return false
	}
	return true
}

// User returns a copy of the signed-in user, or nil.
func (m *SessionManager) User() *models.SessionUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	copied := *m.user
	return &copied
}

// Token returns the current session token.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *SessionManager) clearLocked(ctx context.Context) {
	m.user, m.token = nil, ""
	if err := m.factory.store.Delete(ctx, m.sessionKey, m.tokenKey); err != nil {
		m.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
}

func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
