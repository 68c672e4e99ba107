package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"channel-chat/internal/token"
)

type fakeValidator struct {
	valid map[string]int64
}

func (f *fakeValidator) Validate(secret string) (token.Token, bool) {
	userID, ok := f.valid[secret]
	if !ok {
		return token.Token{}, false
	}
	return token.Token{Secret: secret, UserID: userID}, true
}

func authedHandler(t *testing.T, wantUserID int64, wantSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok || userID != wantUserID {
			t.Errorf("GetUserID = %d, %v, want %d, true", userID, ok, wantUserID)
		}
		secret, ok := GetTokenSecret(r.Context())
		if !ok || secret != wantSecret {
			t.Errorf("GetTokenSecret = %q, %v, want %q, true", secret, ok, wantSecret)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := &fakeValidator{valid: map[string]int64{"good-secret": 42}}
	h := Auth(tokens)(authedHandler(t, 42, "good-secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
	req.Header.Set("Authorization", "Bearer good-secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	tokens := &fakeValidator{valid: map[string]int64{"good-secret": 7}}
	h := Auth(tokens)(authedHandler(t, 7, "good-secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
	req.Header.Set("Authorization", "bearer good-secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuth_UniformRejection(t *testing.T) {
	tokens := &fakeValidator{valid: map[string]int64{"good-secret": 42}}
	h := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic abc",
		"empty token":     "Bearer ",
		"unknown token":   "Bearer nope",
		"malformed token": "Bearer not base64 at all!",
	}
	var bodies []string
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", name, rr.Code, http.StatusUnauthorized)
		}
		bodies = append(bodies, rr.Body.String())
	}
	// Every rejection looks the same regardless of cause.
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("rejection bodies differ: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"x-forwarded-for single", "10.0.0.1", "", "1.2.3.4:555", "10.0.0.1"},
		{"x-forwarded-for chain", "10.0.0.1, 10.0.0.2", "", "1.2.3.4:555", "10.0.0.1"},
		{"x-real-ip", "", "10.0.0.3", "1.2.3.4:555", "10.0.0.3"},
		{"remote addr", "", "", "1.2.3.4:555", "1.2.3.4"},
		{"remote addr no port", "", "", "1.2.3.4", "1.2.3.4"},
		{"nothing", "", "", "", "unknown"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remoteAddr
		if tc.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tc.forwarded)
		}
		if tc.realIP != "" {
			req.Header.Set("X-Real-Ip", tc.realIP)
		}
		if got := ClientIP(req); got != tc.want {
			t.Errorf("%s: ClientIP = %q, want %q", tc.name, got, tc.want)
		}
	}
}
