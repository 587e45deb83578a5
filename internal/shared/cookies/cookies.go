package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"milty-server/internal/shared/config"
)

// AuthCookieName is the cookie the JWT middleware reads when no Authorization header is sent
const AuthCookieName = "auth_token"

// Options describe how the auth cookie is scoped
type Options struct {
	FrontendURL string
	Secure      bool
	SameSite    string
	MaxAge      time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FrontendURL: cfg.Frontend.URL,
		Secure:      cfg.Auth.CookieSecure,
		SameSite:    cfg.Auth.CookieSameSite,
		MaxAge:      cfg.Auth.TokenExpiration,
	}
}

// SetAuthCookie stores token for at most maxAge, or the configured token lifetime when maxAge is zero
func SetAuthCookie(w http.ResponseWriter, opts Options, token string, maxAge time.Duration) {
	if maxAge <= 0 || (opts.MaxAge > 0 && maxAge > opts.MaxAge) {
		maxAge = opts.MaxAge
	}

	cookie := createAuthCookie(opts)
	cookie.Value = token
	cookie.MaxAge = int(maxAge.Seconds())

	http.SetCookie(w, cookie)
}

func ClearAuthCookie(w http.ResponseWriter, opts Options) {
	cookie := createAuthCookie(opts)
	cookie.Value = ""
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)
}

func createAuthCookie(opts Options) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Path:     "/",
		Domain:   extractDomain(opts.FrontendURL),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: parseSameSite(opts.SameSite),
	}
}

// extractDomain uses the first configured front end origin
func extractDomain(frontendURL string) string {
	first, _, _ := strings.Cut(frontendURL, ",")
	parsedURL, err := url.Parse(strings.TrimSpace(first))
	if err != nil || parsedURL.Host == "" {
		return ""
	}

	host := strings.Split(parsedURL.Host, ":")[0]
	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}

	return host
}

func parseSameSite(sameSiteStr string) http.SameSite {
	switch sameSiteStr {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
