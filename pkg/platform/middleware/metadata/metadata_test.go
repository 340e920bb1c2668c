package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"podium/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "first forwarded address", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, want: "10.0.0.1"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": " 10.0.0.9 "}, want: "10.0.0.9"},
		{name: "ipv4 remote addr", remote: "192.168.1.5:5123", want: "192.168.1.5"},
		{name: "ipv6 remote addr", remote: "[::1]:5123", want: "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadataMiddleware(t *testing.T) {
	var got string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.ClientIP(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)
}
