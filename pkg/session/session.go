package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	CookieName = "session"
	DefaultTTL = 24 * time.Hour
)

var (
	ErrInvalid = errors.New("session: invalid token")
	ErrExpired = errors.New("session: expired")
)

type State uint8

const (
	NoSession State = iota
	Refreshed
	Expired
	Invalid
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no session"
	case Refreshed:
		return "refreshed"
	case Expired:
		return "expired"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type Payload struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Claims struct {
	UserID  string    `json:"userId"`
	Expires time.Time `json:"expiresAt"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

type Option func(m *Manager)

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSecureCookie sets the Secure flag, on in production.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(secret string, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue signs a fresh payload for userID expiring one TTL from now.
func (m *Manager) Issue(userID string) (string, Payload, error) {
	p := Payload{UserID: userID, ExpiresAt: m.now().Add(m.ttl)}
	token, err := m.sign(p)
	if err != nil {
		return "", Payload{}, err
	}
	return token, p, nil
}

func (m *Manager) sign(p Payload) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:  p.UserID,
		Expires: p.ExpiresAt.UTC(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "session: sign")
	}
	return signed, nil
}

// Verify checks signature and algorithm, then expiry.
func (m *Manager) Verify(token string) (Payload, error) {
	if token == "" {
		return Payload{}, ErrInvalid
	}
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Payload{}, ErrExpired
	case err != nil:
		return Payload{}, ErrInvalid
	}
	if claims.UserID == "" || claims.Expires.IsZero() {
		return Payload{}, ErrInvalid
	}
	p := Payload{UserID: claims.UserID, ExpiresAt: claims.Expires}
	if !p.ExpiresAt.After(m.now()) {
		return Payload{}, ErrExpired
	}
	return p, nil
}

// Refresh slides the expiry of a still-valid payload.
func (m *Manager) Refresh(p Payload) (string, Payload, error) {
	if !p.ExpiresAt.After(m.now()) {
		return "", Payload{}, ErrExpired
	}
	return m.Issue(p.UserID)
}

// Create issues a session for userID and sets the cookie.
func (m *Manager) Create(w http.ResponseWriter, userID string) (Payload, error) {
	token, p, err := m.Issue(userID)
	if err != nil {
		return Payload{}, err
	}
	http.SetCookie(w, m.cookie(token, p.ExpiresAt))
	return p, nil
}

// Update is the per-request sliding refresh. It reissues the cookie when the
// session is valid and clears it when the token is expired or invalid.
func (m *Manager) Update(w http.ResponseWriter, r *http.Request) (State, Payload) {
	token := tokenFrom(r)
	if token == "" {
		return NoSession, Payload{}
	}
	p, err := m.Verify(token)
	if err == nil {
		var fresh string
		fresh, p, err = m.Refresh(p)
		if err == nil {
			http.SetCookie(w, m.cookie(fresh, p.ExpiresAt))
			return Refreshed, p
		}
	}
	m.Delete(w)
	if errors.Is(err, ErrExpired) {
		return Expired, Payload{}
	}
	return Invalid, Payload{}
}

func (m *Manager) Delete(w http.ResponseWriter) {
	c := m.cookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// FromRequest returns the verified payload of the request's cookie.
func (m *Manager) FromRequest(r *http.Request) (Payload, error) {
	token := tokenFrom(r)
	if token == "" {
		return Payload{}, ErrInvalid
	}
	return m.Verify(token)
}

func (m *Manager) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func tokenFrom(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

type ctxKey struct{}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
