package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginAllowed(t *testing.T) {
	check := originAllowed([]string{"http://localhost:5173", "https://cowele.mx/"})

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "no origin header", origin: "", want: true},
		{name: "same host", origin: "http://api.cowele.test", want: true},
		{name: "listed origin", origin: "http://localhost:5173", want: true},
		{name: "listed with trailing slash", origin: "https://cowele.mx", want: true},
		{name: "case insensitive", origin: "HTTP://LOCALHOST:5173", want: true},
		{name: "foreign origin", origin: "https://evil.test", want: false},
		{name: "other port", origin: "http://localhost:3000", want: false},
		{name: "garbage", origin: "::::", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://api.cowele.test/api/map/stream", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}

			require.Equal(t, tc.want, check(r))
		})
	}
}

func TestOriginAllowed_Wildcard(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://api.cowele.test/api/map/stream", nil)
	r.Header.Set("Origin", "https://anywhere.test")

	require.True(t, originAllowed([]string{"*"})(r))
	require.False(t, originAllowed(nil)(r))
}
