// Package cookie manages the auth token cookies. Tokens also travel in the
// JSON body; the cookies exist for browser clients.
package cookie

import (
	"net/http"
	"time"

	"shuttle-service/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

func SetTokenCookies(c *gin.Context, cfg config.CookieConfig, accessToken, refreshToken string, accessExpiry, refreshExpiry time.Duration) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	setCookie(c, cfg, AccessTokenCookieName, accessToken, accessExpiry)
	setCookie(c, cfg, RefreshTokenCookieName, refreshToken, refreshExpiry)
}

func ClearTokenCookies(c *gin.Context, cfg config.CookieConfig) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	setCookie(c, cfg, AccessTokenCookieName, "", -time.Second)
	setCookie(c, cfg, RefreshTokenCookieName, "", -time.Second)
}

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}

func GetRefreshToken(c *gin.Context) string {
	token, _ := c.Cookie(RefreshTokenCookieName)
	return token
}

// setCookie always scopes to "/" and marks the cookie HttpOnly.
func setCookie(c *gin.Context, cfg config.CookieConfig, name, value string, ttl time.Duration) {
	c.SetCookie(name, value, int(ttl.Seconds()), "/", cfg.Domain, cfg.Secure, true)
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
