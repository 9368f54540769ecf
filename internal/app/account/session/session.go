package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/repo"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/google/uuid"
)

type CookieConfig struct {
	Name   string
	Domain string
	Path   string
	MaxAge time.Duration
	Secure bool
}

// Manager ties a cookie-carried token to a cached user snapshot.
// The cache key is the token itself.
type Manager struct {
	cache  repo.SessionCache
	ttl    time.Duration
	cookie CookieConfig
}

func NewManager(cache repo.SessionCache, cfg *config.Config) *Manager {
	return &Manager{
		cache: cache,
		ttl:   cfg.SessionTTL,
		cookie: CookieConfig{
			Name:   cfg.CookieName,
			Domain: cfg.CookieDomain,
			Path:   cfg.CookiePath,
			MaxAge: cfg.CookieMaxAge,
			Secure: cfg.CookieSecure,
		},
	}
}

func NewToken() string {
	return uuid.NewString()
}

// Issue stores the sanitized user under token and hands the token to the client.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, token string, user model.User) error {
	if err := m.store(ctx, token, user); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    token,
		Domain:   m.cookie.Domain,
		Path:     m.cookie.Path,
		MaxAge:   int(m.cookie.MaxAge.Seconds()),
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve reads the token from the request cookie. A missing or blank
// cookie is reported as absent.
func (m *Manager) Resolve(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(c.Value)
	if token == "" {
		return "", false
	}
	return token, true
}

func (m *Manager) Authenticate(ctx context.Context, token string) (model.User, error) {
	if strings.TrimSpace(token) == "" {
		return model.User{}, customErrors.ErrNeedLogin
	}

	raw, err := m.cache.Get(ctx, token)
	if err != nil {
		if customErrors.IsNotFound(err) {
			return model.User{}, customErrors.ErrNeedLogin
		}
		return model.User{}, err
	}

	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == uuid.Nil {
		return model.User{}, customErrors.ErrNeedLogin
	}
	return u, nil
}

// Refresh rewrites the cached snapshot under the same token with a fresh TTL.
func (m *Manager) Refresh(ctx context.Context, token string, user model.User) error {
	return m.store(ctx, token, user)
}

// Revoke drops the cached entry, if any, and expires the cookie.
func (m *Manager) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, ok := m.Resolve(r)
	if ok {
		if err := m.cache.Delete(ctx, token); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Domain:   m.cookie.Domain,
		Path:     m.cookie.Path,
		MaxAge:   -1,
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) store(ctx context.Context, token string, user model.User) error {
	raw, err := json.Marshal(user.Sanitize())
	if err != nil {
		return customErrors.WrapInternal(err, "marshal session")
	}
	return m.cache.Set(ctx, token, raw, m.ttl)
}
