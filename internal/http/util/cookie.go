package util

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sifan077/blt/config"
)

// CookieJar exposes a fiber request's cookies to the identity resolver. Every
// cookie it writes is the long-lived beacon cookie.
type CookieJar struct {
	c   *fiber.Ctx
	cfg config.BeaconConfig
	now func() time.Time
}

// NewCookieJar binds a jar to the current request.
func NewCookieJar(c *fiber.Ctx, cfg config.BeaconConfig) *CookieJar {
	return &CookieJar{c: c, cfg: cfg, now: time.Now}
}

func (j *CookieJar) Get(name string) string {
	return utils.CopyString(j.c.Cookies(name))
}

// Set writes a domain scoped cookie valid for CookieMaxAgeYears. SameSite=None
// lets partner pages embed the pixel cross-site.
func (j *CookieJar) Set(name, value string) {
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   j.cfg.CookieDomain,
		Expires:  j.now().AddDate(j.cfg.CookieMaxAgeYears, 0, 0),
		Secure:   j.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// SessionID returns the web session id for the request. An explicit value wins;
// otherwise the session cookie is reused or minted. The cookie is refreshed on
// every request so it expires after SessionIdleMinutes of inactivity.
func SessionID(c *fiber.Ctx, cfg config.BeaconConfig, explicit string) string {
	if explicit != "" {
		return explicit
	}

	id := utils.CopyString(c.Cookies(cfg.SessionCookieName))
	if id == "" {
		id = uuid.NewString()
	}

	idle := time.Duration(cfg.SessionIdleMinutes) * time.Minute
	c.Cookie(&fiber.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    id,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  time.Now().Add(idle),
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return id
}
