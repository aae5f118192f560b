package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
)

// Token is an access token with an optional expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the token expires within skew of now.
func (t Token) Expired(now time.Time, skew time.Duration) bool {
	return !t.ExpiresAt.IsZero() && !now.Add(skew).Before(t.ExpiresAt)
}

// TokenSource produces access tokens.
type TokenSource interface {
	Token(ctx context.Context) (Token, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (Token, error)

// Token calls f(ctx).
func (f TokenSourceFunc) Token(ctx context.Context) (Token, error) {
	return f(ctx)
}

// cachedSource reuses a token until it is about to expire.
type cachedSource struct {
	src  TokenSource
	skew time.Duration
	now  func() time.Time

	mu    sync.Mutex
	token Token
	valid bool
}

// Cached wraps src so a token is fetched only when none is cached or the
// cached one expires within skew. Concurrent callers share one refresh.
func Cached(src TokenSource, skew time.Duration) TokenSource {
	return &cachedSource{src: src, skew: skew, now: time.Now}
}

func (c *cachedSource) Token(ctx context.Context) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && !c.token.Expired(c.now(), c.skew) {
		return c.token, nil
	}

	tok, err := c.src.Token(ctx)
	if err != nil {
		c.valid = false
		return Token{}, err
	}
	c.token, c.valid = tok, true
	return tok, nil
}

// BearerToken returns credentials that send tokens from src as bearer tokens.
func BearerToken(src TokenSource) Credentials {
	return Func(func(ctx context.Context, req *pipeline.Request) error {
		tok, err := src.Token(ctx)
		if err != nil {
			return err
		}
		if tok.Value == "" {
			return errors.InvalidToken("token source returned an empty token")
		}
		if tok.Expired(time.Now(), 0) {
			return errors.TokenExpired()
		}
		req.Header.Set("Authorization", "Bearer "+tok.Value)
		return nil
	})
}
