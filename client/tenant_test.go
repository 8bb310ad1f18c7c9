package apiclient

import (
	"net/http"
	"net/url"
	"testing"
)

func TestTenantFromCookies(t *testing.T) {
	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    string
	}{
		{name: "no cookies"},
		{
			name:    "primary cookie",
			cookies: []*http.Cookie{{Name: "tn_tenantId", Value: "greenhill"}},
			want:    "greenhill",
		},
		{
			name: "primary wins over legacy",
			cookies: []*http.Cookie{
				{Name: "tenantId", Value: "old"},
				{Name: "tn_tenantId", Value: "new"},
			},
			want: "new",
		},
		{
			name:    "legacy fallback",
			cookies: []*http.Cookie{{Name: "tenantId", Value: "old"}},
			want:    "old",
		},
		{
			name: "empty primary falls back to legacy",
			cookies: []*http.Cookie{
				{Name: "tn_tenantId", Value: ""},
				{Name: "tenantId", Value: "old"},
			},
			want: "old",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TenantFromCookies(tt.cookies); got != tt.want {
				t.Errorf("TenantFromCookies() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTenantFromURL(t *testing.T) {
	tests := []struct {
		rawurl string
		want   string
	}{
		{rawurl: "https://shule.test", want: ""},
		{rawurl: "https://shule.test/greenhill", want: "greenhill"},
		{rawurl: "https://shule.test/api/v1", want: "v1"}, // api reserved, v1 is not
		{rawurl: "https://shule.test/app/greenhill/dashboard", want: "greenhill"},
		{rawurl: "https://shule.test/Admin/greenhill", want: "greenhill"},
	}
	for _, tt := range tests {
		t.Run(tt.rawurl, func(t *testing.T) {
			u, err := url.Parse(tt.rawurl)
			if err != nil {
				t.Fatal(err)
			}
			if got := tenantFromURL(u); got != tt.want {
				t.Errorf("tenantFromURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTenant(t *testing.T) {
	base, _ := url.Parse("https://shule.test/greenhill")
	cookies := []*http.Cookie{{Name: "tn_tenantId", Value: "cookiehill"}}

	if got := resolveTenant("explicit", cookies, base); got != "explicit" {
		t.Errorf("resolveTenant(explicit) = %q", got)
	}
	if got := resolveTenant("", cookies, base); got != "cookiehill" {
		t.Errorf("resolveTenant(cookies) = %q", got)
	}
	if got := resolveTenant("", nil, base); got != "greenhill" {
		t.Errorf("resolveTenant(base URL) = %q", got)
	}
	if got := resolveTenant("", nil, nil); got != "" {
		t.Errorf("resolveTenant(nothing) = %q, want empty", got)
	}
}
