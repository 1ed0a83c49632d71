package web

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errNoSession   = errors.New("no session")
	errKeyMismatch = errors.New("session belongs to another key")
)

type CookieConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

// SessionCookies binds a browser to its page-controller session with a
// signed cookie. The cookie carries the session ID and an HMAC fingerprint
// of the API key the session was mounted with, never the key itself.
type SessionCookies struct{ cfg CookieConfig }

func NewSessionCookies(secret, name, domain string, secure bool, ttl time.Duration) *SessionCookies {
	if name == "" {
		name = "pm_session"
	}
	return &SessionCookies{cfg: CookieConfig{
		HMACSecret:   []byte(secret),
		CookieName:   name,
		CookieDomain: domain,
		SecureCookie: secure,
		TTL:          ttl,
	}}
}

type SessionClaims struct {
	KeyFingerprint string `json:"kfp"`
	jwt.RegisteredClaims
}

const keyFingerprintPrefix = "x_api_key:"

// fingerprint is an HMAC of apiKey under the cookie secret. The empty key
// has a fingerprint too, so a keyless session is bound like any other.
func (c *SessionCookies) fingerprint(apiKey string) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(keyFingerprintPrefix+apiKey, c.cfg.HMACSecret)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sig), nil
}

func (c *SessionCookies) keyMatches(fp, apiKey string) bool {
	sig, err := base64.RawURLEncoding.DecodeString(fp)
	if err != nil || len(sig) == 0 {
		return false
	}
	return jwt.SigningMethodHS256.Verify(keyFingerprintPrefix+apiKey, sig, c.cfg.HMACSecret) == nil
}

func (c *SessionCookies) Mint(w http.ResponseWriter, sessionID, apiKey string) error {
	fp, err := c.fingerprint(apiKey)
	if err != nil {
		return err
	}
	now := time.Now()
	claims := SessionClaims{
		KeyFingerprint: fp,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TTL)),
			Subject:   sessionID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.HMACSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(signed, int(c.cfg.TTL.Seconds())))
	return nil
}

func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *SessionCookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFor returns the session bound to the request when it was mounted
// with apiKey. A missing or invalid cookie gives errNoSession, a cookie of
// another key errKeyMismatch.
func (c *SessionCookies) SessionFor(r *http.Request, apiKey string) (string, error) {
	ck, err := r.Cookie(c.cfg.CookieName)
	if err != nil || ck.Value == "" {
		return "", errNoSession
	}
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(t *jwt.Token) (any, error) {
		return c.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", errNoSession
	}
	if !c.keyMatches(claims.KeyFingerprint, apiKey) {
		return "", errKeyMismatch
	}
	return claims.Subject, nil
}
