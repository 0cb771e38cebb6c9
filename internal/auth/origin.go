package auth

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

var ErrOriginMismatch = errors.New("request origin does not match host")

// AssertSameOrigin rejects cross-site state-mutating requests. The request
// must carry a Host (or X-Forwarded-Host) header and an Origin or Referer
// whose host matches it once scheme-default ports are normalized. Having
// neither Origin nor Referer is a failure, not a pass.
func AssertSameOrigin(r *http.Request) error {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if host == "" {
		return ErrOriginMismatch
	}
	// Proxies may forward a list; the first entry is the client-facing host.
	if i := strings.Index(host, ","); i >= 0 {
		host = strings.TrimSpace(host[:i])
	}

	source := r.Header.Get("Origin")
	if source == "" {
		source = r.Header.Get("Referer")
	}
	if source == "" {
		return ErrOriginMismatch
	}

	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return ErrOriginMismatch
	}

	if !hostsMatch(host, u) {
		return ErrOriginMismatch
	}
	return nil
}

// hostsMatch compares the expected Host header value against the parsed
// Origin/Referer URL. Ports are normalized: the URL side defaults to its
// scheme's port, the header side to 80 for localhost and to the URL's
// default otherwise (the header carries no scheme of its own).
func hostsMatch(expected string, u *url.URL) bool {
	eHost, ePort := splitHostPort(expected)
	oHost, oPort := u.Hostname(), u.Port()

	if oPort == "" {
		oPort = defaultPort(u.Scheme)
	}
	if ePort == "" {
		if strings.EqualFold(eHost, "localhost") {
			ePort = "80"
		} else {
			ePort = defaultPort(u.Scheme)
		}
	}

	return strings.EqualFold(eHost, oHost) && ePort == oPort
}

func splitHostPort(hostport string) (host, port string) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, ""
	}
	return host, port
}

func defaultPort(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}

// SameOriginMiddleware applies AssertSameOrigin to every state-mutating
// method. The client only ever sees a generic "request blocked".
func SameOriginMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			if err := AssertSameOrigin(c.Request()); err != nil {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "request blocked",
				})
			}

			return next(c)
		}
	}
}
