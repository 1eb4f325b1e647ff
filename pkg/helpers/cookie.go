package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "auth_token"
	RefreshCookie = "refresh_token"
)

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetAccess writes the access credential cookie.
func (m *Manager) SetAccess(c *gin.Context, access string, exp time.Time) {
	m.set(c, AccessCookie, access, maxAgeFrom(exp))
}

// SetRefresh writes the refresh secret cookie for ttl.
func (m *Manager) SetRefresh(c *gin.Context, refresh string, ttl time.Duration) {
	m.set(c, RefreshCookie, refresh, int(ttl.Seconds()))
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rttl time.Duration) {
	m.SetAccess(c, access, aexp)
	m.SetRefresh(c, refresh, rttl)
}

func (m *Manager) Clear(c *gin.Context) {
	m.set(c, AccessCookie, "", -1)
	m.set(c, RefreshCookie, "", -1)
}

func (m *Manager) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
