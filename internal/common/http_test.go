package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{name: "first forwarded hop", forwarded: " 203.0.113.7 , 10.0.0.1", remote: "10.0.0.2:4000", want: "203.0.113.7"},
		{name: "mapped ipv4 unwrapped", forwarded: "::ffff:198.51.100.4", want: "198.51.100.4"},
		{name: "malformed forwarded falls back to real ip", forwarded: "unknown", realIP: "2001:db8::1", want: "2001:db8::1"},
		{name: "remote address without port", remote: "192.0.2.9", want: "192.0.2.9"},
		{name: "remote address with port", remote: "[2001:db8::2]:443", want: "2001:db8::2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			require.Equal(t, tc.want, ClientIP(req))
		})
	}
	require.Empty(t, ClientIP(nil))
}
