package handlers

import (
	"net/http"
	"time"

	"github.com/dom/account-service/internal/api/middleware"
	"github.com/dom/account-service/internal/auth"
)

const RefreshTokenCookie = "refreshToken"

// CookieSettings controls the session cookie pair.
type CookieSettings struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieSettings) setSession(w http.ResponseWriter, tokens *auth.TokenPair) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, tokens.AccessToken, int(c.AccessTTL.Seconds())))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, tokens.RefreshToken, int(c.RefreshTTL.Seconds())))
}

func (c CookieSettings) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c CookieSettings) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
