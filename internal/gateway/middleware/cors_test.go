package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "no origin", method: http.MethodPost, wantStatus: http.StatusTeapot, wantOrigin: "*"},
		{name: "open echoes origin", method: http.MethodPost, origin: "http://a.test", wantStatus: http.StatusTeapot, wantOrigin: "http://a.test"},
		{name: "preflight short circuits", method: http.MethodOptions, origin: "http://a.test", wantStatus: http.StatusOK, wantOrigin: "http://a.test"},
		{name: "listed origin", allowed: []string{"http://a.test"}, method: http.MethodPost, origin: "http://a.test", wantStatus: http.StatusTeapot, wantOrigin: "http://a.test"},
		{name: "unlisted preflight", allowed: []string{"http://a.test"}, method: http.MethodOptions, origin: "http://b.test", wantStatus: http.StatusForbidden},
		{name: "unlisted request passes without header", allowed: []string{"http://a.test"}, method: http.MethodPost, origin: "http://b.test", wantStatus: http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
