package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultSessionTTL is a fixed one-week lifetime from creation; there is
// no sliding-window renewal.
const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrNoSession = errors.New("no valid session")

// SessionStore holds session records server-side, keyed by the session id
// carried in the token. Destroying the record invalidates the token
// immediately regardless of its signature lifetime.
type SessionStore interface {
	Set(ctx context.Context, sid string, identity Identity, ttl time.Duration) error
	Get(ctx context.Context, sid string) (*Identity, error)
	Del(ctx context.Context, sid string) error
}

type sessionClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type SessionManager struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(store SessionStore, secret []byte, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{store: store, secret: secret, ttl: ttl}
}

// Create issues a signed token and records the session server-side. The
// token's jti keys the record.
func (m *SessionManager) Create(ctx context.Context, identity Identity) (string, error) {
	sid := uuid.NewString()
	now := time.Now()

	claims := &sessionClaims{
		UserID: identity.UserID,
		Role:   string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing session token")
	}

	if err := m.store.Set(ctx, sid, identity, m.ttl); err != nil {
		return "", errors.Wrap(err, "storing session")
	}
	return token, nil
}

// Resolve returns the identity for a token, or ErrNoSession when the
// token is invalid or the server-side record is gone.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, ErrNoSession
	}

	identity, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNoSession
	}
	return identity, nil
}

// Destroy invalidates the session. Destroying an already-invalid session
// is not an error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.store.Del(ctx, claims.ID)
}

func (m *SessionManager) parse(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// --- Redis store ---

const sessionKeyPrefix = "session:"

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Set(ctx context.Context, sid string, identity Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return s.client.Set(ctx, sessionKeyPrefix+sid, payload, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sid string) (*Identity, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+sid).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading session")
	}

	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, errors.Wrap(err, "decoding session")
	}
	return &identity, nil
}

func (s *RedisSessionStore) Del(ctx context.Context, sid string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sid).Err()
}

// --- In-memory store ---

// MemorySessionStore backs the session manager in tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	identity Identity
	expires  time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Set(ctx context.Context, sid string, identity Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = memorySession{identity: identity, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, sid string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok || time.Now().After(sess.expires) {
		delete(s.sessions, sid)
		return nil, nil
	}
	identity := sess.identity
	return &identity, nil
}

func (s *MemorySessionStore) Del(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}
