package apiclient

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	tenantCookie       = "tn_tenantId"
	legacyTenantCookie = "tenantId"
)

// reservedWords are path segments that can never be tenant identifiers.
var reservedWords = map[string]struct{}{
	"api":     {},
	"www":     {},
	"app":     {},
	"admin":   {},
	"auth":    {},
	"login":   {},
	"static":  {},
	"assets":  {},
	"public":  {},
	"session": {},
}

// TenantFromCookies reads the tenant id from the tn_tenantId cookie, falling
// back to the legacy tenantId cookie.
func TenantFromCookies(cookies []*http.Cookie) string {
	var legacy string
	for _, c := range cookies {
		switch c.Name {
		case tenantCookie:
			if c.Value != "" {
				return c.Value
			}
		case legacyTenantCookie:
			legacy = c.Value
		}
	}
	return legacy
}

// tenantFromURL extracts the first non-reserved path segment of u.
func tenantFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg == "" {
			continue
		}
		if _, reserved := reservedWords[strings.ToLower(seg)]; reserved {
			continue
		}
		return seg
	}
	return ""
}

// resolveTenant applies the fallback order: explicit value, cookie-stored id,
// first non-reserved base-URL path segment. Empty means the header is omitted.
func resolveTenant(explicit string, cookies []*http.Cookie, base *url.URL) string {
	if explicit != "" {
		return explicit
	}
	if t := TenantFromCookies(cookies); t != "" {
		return t
	}
	return tenantFromURL(base)
}
