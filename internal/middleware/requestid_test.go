package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	const incoming = "123e4567-e89b-12d3-a456-426614174000"

	cases := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generated when absent"},
		{name: "kept when valid", header: incoming, wantSame: true},
		{name: "replaced when invalid", header: "not-a-uuid"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RequestID())

			var fromCtx string
			r.GET("/", func(c *gin.Context) {
				fromCtx = c.GetString(RequestIDKey)
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(RequestIDHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("header %q is not a uuid", got)
			}
			if got != fromCtx {
				t.Fatalf("context id %q != header id %q", fromCtx, got)
			}
			if tc.wantSame != (got == tc.header) {
				t.Fatalf("header %q, incoming %q", got, tc.header)
			}
		})
	}
}
