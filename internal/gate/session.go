// Package gate rejects unauthenticated, forged, or abusive requests before
// any business data is parsed.
package gate

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "fd_session"

// Session is the authenticated caller identity attached to the request
// context once the gate passes.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

var ErrInvalidSession = errors.New("invalid session")

// SessionProvider verifies a raw session token. Injected so deployments can
// swap the HMAC verifier for a session-store lookup.
type SessionProvider interface {
	Session(ctx context.Context, token string) (*Session, error)
}

// HMACSessionProvider verifies self-contained tokens of the form
// "<sid>.<expiry-unix>.<hex sig>" where sig = HMAC-SHA256(secret, sid.expiry).
// The storefront issues these when a browsing session starts; no server-side
// session state is involved.
type HMACSessionProvider struct {
	Secret  []byte
	nowFunc func() time.Time
}

func NewHMACSessionProvider(secret []byte) *HMACSessionProvider {
	return &HMACSessionProvider{Secret: secret, nowFunc: time.Now}
}

func (p *HMACSessionProvider) Session(_ context.Context, token string) (*Session, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidSession
	}
	sid, expiryStr, sig := parts[0], parts[1], parts[2]
	if sid == "" {
		return nil, ErrInvalidSession
	}

	want := signSession(p.Secret, sid+"."+expiryStr)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return nil, ErrInvalidSession
	}

	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return nil, ErrInvalidSession
	}
	expiresAt := time.Unix(expiry, 0)
	if p.nowFunc().After(expiresAt) {
		return nil, ErrInvalidSession
	}

	return &Session{ID: sid, ExpiresAt: expiresAt}, nil
}

// SignSessionToken mints a token the provider above accepts. Used by the
// storefront's session-issue endpoint and by tests.
func SignSessionToken(secret []byte, sid string, expiresAt time.Time) string {
	payload := sid + "." + strconv.FormatInt(expiresAt.Unix(), 10)
	return payload + "." + signSession(secret, payload)
}

func signSession(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
